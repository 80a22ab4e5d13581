package securitymanager

import (
	"errors"

	"github.com/pebbe/zmq4"
)

// ClientSecurityManager manages encryption for health probe sockets.
type ClientSecurityManager struct {
	// Provides LoadKeys/WriteKeys functionality
	*keyWriteLoader
	// Public key of the worker endpoint to connect to.
	serverPublic string
}

// NewClientSecurityManager sets up the manager and generates a new client key pair.
//
// The endpoint's public key must be set before probing, otherwise the connection
// will not succeed.
func NewClientSecurityManager() *ClientSecurityManager {
	mgr := &ClientSecurityManager{}
	var err error

	mgr.keyWriteLoader = new(keyWriteLoader)
	mgr.public, mgr.private, err = zmq4.NewCurveKeypair()

	if err != nil {
		return nil
	}

	return mgr
}

// ApplyToClientSocket sets up a probe socket for CURVE security. If called on nil, does
// nothing. This function must be called before calling Connect() on the socket!
func (mgr *ClientSecurityManager) ApplyToClientSocket(sock *zmq4.Socket) error {
	if mgr == nil {
		return nil
	}

	if mgr.serverPublic == "" || mgr.public == "" || mgr.private == "" {
		return errors.New("not all three keys (server's public, client public, client private) are set")
	}

	t, err := sock.GetType()
	if err != nil {
		return err
	}
	if t != zmq4.REQ && t != zmq4.DEALER {
		return errors.New("wrong socket type (not DEALER, REQ)")
	}

	return sock.ClientAuthCurve(mgr.serverPublic, mgr.public, mgr.private)
}

func (mgr *ClientSecurityManager) SetServerPubkey(key string) {
	mgr.serverPublic = key
}

// LoadServerPubkey loads the public key of the endpoint from the specified file.
func (mgr *ClientSecurityManager) LoadServerPubkey(keyfile string) error {
	kwl := new(keyWriteLoader)

	if err := kwl.LoadKeys(keyfile, DONOTREAD); err != nil {
		return err
	}
	mgr.serverPublic = kwl.public
	return nil
}

// SetKeys sets the client key pair to the specified keys.
func (mgr *ClientSecurityManager) SetKeys(public, private string) {
	mgr.public, mgr.private = public, private
}

func (mgr *ClientSecurityManager) GetPublicKey() string {
	return mgr.public
}
