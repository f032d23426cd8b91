package zim

import (
	"fmt"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// direntCache memoizes decoded dirents by pointer-table index.
type direntCache struct {
	entries *lru.Cache[int, *Dirent]
	group   singleflight.Group
}

func newDirentCache(size int) (*direntCache, error) {
	entries, err := lru.New[int, *Dirent](size)
	if err != nil {
		return nil, fmt.Errorf("dirent cache: %w", err)
	}
	return &direntCache{entries: entries}, nil
}

// get returns the cached dirent for idx, calling load at most once per
// miss even under concurrent lookups.
func (c *direntCache) get(idx int, load func() (*Dirent, error)) (*Dirent, error) {
	if d, ok := c.entries.Get(idx); ok {
		return d, nil
	}
	v, err, _ := c.group.Do(strconv.Itoa(idx), func() (any, error) {
		if d, ok := c.entries.Get(idx); ok {
			return d, nil
		}
		d, err := load()
		if err != nil {
			return nil, err
		}
		c.entries.Add(idx, d)
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Dirent), nil //nolint:errcheck // type assertion always succeeds when err is nil
}

func (c *direntCache) len() int {
	return c.entries.Len()
}
