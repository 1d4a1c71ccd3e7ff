package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return v, nil
}

func PutJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %q: %w", key, err)
	}
	return s.Put(ctx, key, raw)
}

// UpdateJSON decodes the value under key, lets fn change it and writes it back
// atomically. fn sees ErrNotFound-style absence as exists == false.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(v *T, exists bool) error) error {
	return s.Update(ctx, key, func(current []byte, exists bool) ([]byte, error) {
		var v T
		if exists {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
			}
		}
		if err := fn(&v, exists); err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
}

var errKeyTaken = errors.New("key already taken")

// maxKeyProbes bounds the search for a free timestamp key.
const maxKeyProbes = 1000

// CreateTimestamped stores a new document under the first free key of the form
// prefix_<unix-millis>, starting at now. build receives the chosen key so the
// document can carry it as its identifier.
func CreateTimestamped(ctx context.Context, s Store, prefix string, now time.Time, build func(key string) any) (string, error) {
	ms := now.UnixMilli()
	for i := 0; i < maxKeyProbes; i++ {
		key := TimestampKey(prefix, ms+int64(i))
		err := s.Update(ctx, key, func(_ []byte, exists bool) ([]byte, error) {
			if exists {
				return nil, errKeyTaken
			}
			return json.Marshal(build(key))
		})
		if errors.Is(err, errKeyTaken) {
			continue
		}
		if err != nil {
			return "", err
		}
		return key, nil
	}
	return "", fmt.Errorf("no free %s key near %d", prefix, ms)
}

func TimestampKey(prefix string, unixMillis int64) string {
	return prefix + "_" + strconv.FormatInt(unixMillis, 10)
}

// ParseTimestampKey extracts the millisecond timestamp from a key built by
// TimestampKey.
func ParseTimestampKey(prefix, key string) (time.Time, bool) {
	raw, ok := strings.CutPrefix(key, prefix+"_")
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}
