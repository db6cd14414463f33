// Package cache persists admitted BA agreement snapshots to a JSON
// file keyed by peer MAC, so tooling can inspect negotiated state
// across daemon restarts.
package cache

import (
	"fmt"
	"io/ioutil"
	"os"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/rtlab/ba"
	"github.com/rtlab/ba/session"
)

// SessionCache stores per-peer admitted agreements.
type SessionCache interface {
	Store(mac ba.Addr, sessions []session.Info, replace bool) error
	Load(mac ba.Addr) ([]session.Info, error)
	StoreSnapshot(snapshot []session.Info) error
	Clear() error
}

type sessionCache struct {
	filename string
	lock     sync.RWMutex
}

func New(filename string) SessionCache {
	sc := sessionCache{
		filename: filename,
	}

	return &sc
}

func (sc *sessionCache) Store(mac ba.Addr, sessions []session.Info, replace bool) error {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	cache, err := sc.loadExisting()
	if err != nil {
		return err
	}

	_, ok := cache[mac.String()]
	if ok && !replace {
		return fmt.Errorf("cache already contains sessions for %s", mac.String())
	}

	cache[mac.String()] = sessions

	return sc.storeCache(cache)
}

func (sc *sessionCache) Load(mac ba.Addr) ([]session.Info, error) {
	sc.lock.RLock()
	defer sc.lock.RUnlock()

	cache, err := sc.loadExisting()
	if err != nil {
		return nil, err
	}

	s, ok := cache[mac.String()]
	if !ok {
		return nil, fmt.Errorf("sessions for %s not found in cache", mac.String())
	}

	return s, nil
}

// StoreSnapshot replaces the whole cache with a table snapshot, grouped
// by peer.
func (sc *sessionCache) StoreSnapshot(snapshot []session.Info) error {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	cache := map[string][]session.Info{}
	for _, s := range snapshot {
		cache[s.Peer] = append(cache[s.Peer], s)
	}

	return sc.storeCache(cache)
}

func (sc *sessionCache) Clear() error {
	sc.lock.Lock()
	defer sc.lock.Unlock()

	return os.Remove(sc.filename)
}

func (sc *sessionCache) loadExisting() (map[string][]session.Info, error) {
	_, err := os.Stat(sc.filename)
	if os.IsNotExist(err) {
		return map[string][]session.Info{}, nil
	}

	in, err := ioutil.ReadFile(sc.filename)
	if err != nil {
		return nil, err
	}

	var cache map[string][]session.Info
	err = jsoniter.Unmarshal(in, &cache)
	if err != nil {
		return nil, err
	}

	return cache, nil
}

func (sc *sessionCache) storeCache(cache map[string][]session.Info) error {
	out, err := jsoniter.Marshal(cache)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(sc.filename, out, 0644)
}
