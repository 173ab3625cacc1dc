package slots

import "time"

// StartSyncer flushes the store to dir every interval while stop is open.
// Failed writes stay dirty and are retried on the next tick. onErr, if set,
// receives each flush error.
func StartSyncer(s *Store, dir string, interval time.Duration, stop <-chan struct{}, onErr func(error)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if !s.IsDirty() {
				continue
			}
			if err := s.PersistTo(dir); err != nil && onErr != nil {
				onErr(err)
			}
		case <-stop:
			return
		}
	}
}

// IsDirty reports whether any slot changed since the last successful flush.
func (s *Store) IsDirty() bool {
	s.Mu.RLock()
	defer s.Mu.RUnlock()
	return s.Dirty
}
