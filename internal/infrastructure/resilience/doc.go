/*
Package resilience provides a circuit breaker for remote storage calls.

# Overview

The file server client wraps every request in a Breaker so that a down or
overloaded server fails fast instead of stacking up retries.

# Usage

	breaker := resilience.New("fileserver", resilience.Settings{
		MaxRequests: 3,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// storage errors such as NotFound are answers, not outages
		IsSuccessful: func(err error) bool {
			return err == nil || storage.KindOf(err) != storage.KindUnknown
		},
	})

	list, err := resilience.Do(breaker, func() (*storage.FileList, error) {
		return fetch(ctx)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open
*/
package resilience
