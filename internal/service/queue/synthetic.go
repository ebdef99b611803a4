package queue

import (
	"time"

	"github.com/tidwall/sjson"

	"github.com/heartmarshall/glossync/internal/domain"
)

// syntheticRow stamps the temporary id and pending flag onto the payload.
func syntheticRow(store domain.StoreName, extra map[string]any) syntheticFunc {
	return func(id string, payload []byte, now time.Time) (domain.CachedEntity, error) {
		data, err := sjson.SetBytes(payload, "id", id)
		if err != nil {
			return domain.CachedEntity{}, err
		}
		if data, err = sjson.SetBytes(data, "pending", true); err != nil {
			return domain.CachedEntity{}, err
		}
		for k, v := range extra {
			if data, err = sjson.SetBytes(data, k, v); err != nil {
				return domain.CachedEntity{}, err
			}
		}
		return domain.CachedEntity{
			Store:       store,
			Key:         id,
			Data:        data,
			LastUpdated: now,
			Synthetic:   true,
		}, nil
	}
}
