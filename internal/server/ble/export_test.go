package ble

// Connection bookkeeping hooks, exported for tests that cannot drive a real
// HCI device.

func (s *Server) CentralConnected(peer string) {
	s.centralConnected(peer)
}

func (s *Server) CentralDisconnected() {
	s.centralDisconnected()
}

const StatusInsufficientAuthorization = statusInsufficientAuthorization
