package poller

func availableBackends() []Backend { return []Backend{BackendPoll} }
