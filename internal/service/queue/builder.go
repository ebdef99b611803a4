package queue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/heartmarshall/glossync/internal/domain"
)

// permanentIDPaths are tried in order against a creation response body.
var permanentIDPaths = []string{"id", "data.id", "term.id", "comment.id", "term_id", "comment_id"}

// BuildRequest turns a queued entry into the backend request that replays it.
// The entry's payload already carries rewritten identifiers; the target id
// goes into both the path and the body.
func (s *Service) BuildRequest(e domain.QueueEntry) (domain.ReplayRequest, error) {
	fam, ok := families[e.Queue]
	if !ok {
		return domain.ReplayRequest{}, fmt.Errorf("build request: unknown queue %q", e.Queue)
	}
	req := domain.ReplayRequest{Service: fam.service, IdempotencyKey: e.ID}

	var err error
	switch e.Queue {
	case domain.QueueTermSubmissions:
		err = withPayload(e, &req, func(p domain.TermSubmission) (string, string, any) {
			return http.MethodPost, "/api/terms", p
		})
	case domain.QueueTermVotes:
		err = withPayload(e, &req, func(p domain.TermVote) (string, string, any) {
			return http.MethodPost, "/api/terms/" + url.PathEscape(p.TermID) + "/votes",
				map[string]any{"term_id": p.TermID, "direction": p.Direction}
		})
	case domain.QueueTermApprovals:
		err = withPayload(e, &req, func(p domain.TermApproval) (string, string, any) {
			body := map[string]any{"term_id": p.TermID}
			if p.Comment != nil {
				body["comment"] = *p.Comment
			}
			return http.MethodPut, "/api/terms/" + url.PathEscape(p.TermID) + "/approve", body
		})
	case domain.QueueTermRejections:
		err = withPayload(e, &req, func(p domain.TermRejection) (string, string, any) {
			return http.MethodPut, "/api/terms/" + url.PathEscape(p.TermID) + "/reject",
				map[string]any{"term_id": p.TermID, "reason": p.Reason}
		})
	case domain.QueueTermDeletes:
		err = withPayload(e, &req, func(p domain.TermDelete) (string, string, any) {
			return http.MethodDelete, "/api/terms/" + url.PathEscape(p.TermID), nil
		})
	case domain.QueueComments:
		err = withPayload(e, &req, func(p domain.Comment) (string, string, any) {
			return http.MethodPost, "/api/comments", p
		})
	case domain.QueueCommentVotes:
		err = withPayload(e, &req, func(p domain.CommentVote) (string, string, any) {
			return http.MethodPost, "/api/comments/" + url.PathEscape(p.CommentID) + "/votes",
				map[string]any{"comment_id": p.CommentID, "direction": p.Direction}
		})
	case domain.QueueCommentEdits:
		err = withPayload(e, &req, func(p domain.CommentEdit) (string, string, any) {
			return http.MethodPut, "/api/comments/" + url.PathEscape(p.CommentID),
				map[string]any{"comment_id": p.CommentID, "text": p.Text}
		})
	case domain.QueueCommentDeletes:
		err = withPayload(e, &req, func(p domain.CommentDelete) (string, string, any) {
			return http.MethodDelete, "/api/comments/" + url.PathEscape(p.CommentID), nil
		})
	case domain.QueueXPAwards:
		err = withPayload(e, &req, func(p domain.XPAward) (string, string, any) {
			return http.MethodPost, "/api/xp", p
		})
	case domain.QueueProfilePictureUploads:
		err = buildPictureUpload(e, &req)
	}
	if err != nil {
		return domain.ReplayRequest{}, err
	}
	return req, nil
}

func withPayload[T any](e domain.QueueEntry, req *domain.ReplayRequest, fn func(T) (method, path string, body any)) error {
	p, err := domain.DecodePayload[T](e)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	method, path, body := fn(p)
	req.Method = method
	req.Path = path
	if body == nil {
		return nil
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s body: %w", e.Queue, err)
	}
	req.Body = raw
	req.ContentType = "application/json"
	return nil
}

func buildPictureUpload(e domain.QueueEntry, req *domain.ReplayRequest) error {
	p, err := domain.DecodePayload[domain.ProfilePictureUpload](e)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, p.FileName))
	h.Set("Content-Type", p.ContentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("profile picture part: %w", err)
	}
	if _, err := part.Write(p.Data); err != nil {
		return fmt.Errorf("profile picture part: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("profile picture form: %w", err)
	}

	req.Method = http.MethodPost
	req.Path = "/api/users/me/profile-picture"
	req.Body = buf.Bytes()
	req.ContentType = w.FormDataContentType()
	return nil
}

// PermanentID extracts the server-assigned id from a creation response.
func (s *Service) PermanentID(e domain.QueueEntry, body []byte) (string, bool) {
	if _, ok := s.Creates(e.Queue); !ok || !gjson.ValidBytes(body) {
		return "", false
	}
	for _, p := range permanentIDPaths {
		if v := gjson.GetBytes(body, p); v.Exists() && v.String() != "" {
			return v.String(), true
		}
	}
	return "", false
}
