package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/heartmarshall/glossync/internal/domain"
)

var errNotJSON = errors.New("body is not valid JSON")

// Envelope keys servers wrap lists and objects in.
var (
	listPaths   = []string{"data", "items", "terms", "comments", "results"}
	objectPaths = []string{"data", "term", "user", "profile"}
)

func parse(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, errNotJSON
	}
	return gjson.ParseBytes(body), nil
}

func unwrapList(root gjson.Result) (gjson.Result, error) {
	if root.IsArray() {
		return root, nil
	}
	for _, p := range listPaths {
		if v := root.Get(p); v.IsArray() {
			return v, nil
		}
	}
	return gjson.Result{}, errors.New("no list in body")
}

func unwrapObject(root gjson.Result) (gjson.Result, error) {
	if !root.IsObject() {
		return gjson.Result{}, errors.New("body is not an object")
	}
	if root.Get("id").Exists() {
		return root, nil
	}
	for _, p := range objectPaths {
		if v := root.Get(p); v.IsObject() {
			return v, nil
		}
	}
	return root, nil
}

func entity(store domain.StoreName, key, raw string, now time.Time, expiresAt *time.Time) domain.CachedEntity {
	return domain.CachedEntity{
		Store:       store,
		Key:         key,
		Data:        []byte(raw),
		LastUpdated: now,
		ExpiresAt:   expiresAt,
	}
}

func mirrorTerms(_ []string, body []byte, now time.Time, exp *time.Time) ([]domain.CachedEntity, error) {
	root, err := parse(body)
	if err != nil {
		return nil, err
	}
	list, err := unwrapList(root)
	if err != nil {
		return nil, err
	}

	var out []domain.CachedEntity
	for i, item := range list.Array() {
		id := item.Get("id").String()
		if !item.IsObject() || id == "" {
			return nil, fmt.Errorf("term %d: missing id", i)
		}
		out = append(out, entity(domain.StoreTerms, id, item.Raw, now, exp))
	}
	return out, nil
}

func mirrorTerm(match []string, body []byte, now time.Time, exp *time.Time) ([]domain.CachedEntity, error) {
	root, err := parse(body)
	if err != nil {
		return nil, err
	}
	obj, err := unwrapObject(root)
	if err != nil {
		return nil, err
	}

	id := obj.Get("id").String()
	if id == "" {
		id = match[1]
	}
	return []domain.CachedEntity{entity(domain.StoreTerms, id, obj.Raw, now, exp)}, nil
}

// mirrorComments stores the whole comment list of a term as one row keyed by term id.
func mirrorComments(match []string, body []byte, now time.Time, exp *time.Time) ([]domain.CachedEntity, error) {
	root, err := parse(body)
	if err != nil {
		return nil, err
	}
	list, err := unwrapList(root)
	if err != nil {
		return nil, err
	}

	termID := match[1]
	data, err := sjson.Set(`{}`, "term_id", termID)
	if err != nil {
		return nil, err
	}
	if data, err = sjson.SetRaw(data, "comments", list.Raw); err != nil {
		return nil, err
	}
	return []domain.CachedEntity{entity(domain.StoreCommentsByTerm, termID, data, now, exp)}, nil
}

func mirrorXP(match []string, body []byte, now time.Time, exp *time.Time) ([]domain.CachedEntity, error) {
	root, err := parse(body)
	if err != nil {
		return nil, err
	}
	obj, err := unwrapObject(root)
	if err != nil {
		return nil, err
	}

	userID := match[1]
	data := obj.Raw
	if !obj.Get("user_id").Exists() {
		if data, err = sjson.Set(data, "user_id", userID); err != nil {
			return nil, err
		}
	}
	return []domain.CachedEntity{entity(domain.StoreXPRecords, userID, data, now, exp)}, nil
}

func mirrorProfile(match []string, body []byte, now time.Time, exp *time.Time) ([]domain.CachedEntity, error) {
	root, err := parse(body)
	if err != nil {
		return nil, err
	}
	obj, err := unwrapObject(root)
	if err != nil {
		return nil, err
	}
	return []domain.CachedEntity{entity(domain.StoreProfiles, match[1], obj.Raw, now, exp)}, nil
}
