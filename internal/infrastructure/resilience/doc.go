/*
Package resilience provides the circuit breaker guarding calls into the native shell.

A remote storage bridge can disappear (the shell backgrounded, the WebView
restarted). Without a breaker every chunk of every pending save would wait
for its own transport error. With one, the first few failures trip the
breaker and further calls fail fast with ErrCircuitOpen until the shell is
reachable again.

# Usage

	breaker := resilience.New("native-bridge", resilience.Settings{
		MaxRequests: 1,
		Timeout:     5 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, bridge.ErrNotFound)
		},
	})

	err := breaker.Execute(func() error {
		return client.Call()
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                       [failure]
	                                           v
	                                         Open
*/
package resilience
