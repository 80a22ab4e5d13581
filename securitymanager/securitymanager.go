// Package securitymanager sets up CURVE encryption and authentication for the ZeroMQ
// health endpoint of workers and for the probes connecting to it. It follows the
// Iron House example of the ZeroMQ CURVE documentation.
package securitymanager

import (
	"errors"

	"github.com/pebbe/zmq4"
)

const DONOTWRITE = "___donotwrite_key_to_file"
const DONOTREAD = "___donotread_key_from_file"

// ZAP domain of the health endpoint. Only one secured socket exists per worker process.
const SERVER_DOMAIN = "redisbus.health"

// A ServerSecurityManager can be supplied to server.NewHealthServer(). It then sets up
// encryption and authentication, optionally restricting clients by key and by IP address.
type ServerSecurityManager struct {
	*keyWriteLoader
	// Z85 keys
	allowed_client_keys []string

	// Only set one of both!
	allowed_client_addresses []string
	denied_client_addresses  []string
}

// Set up key manager and generate new key pair.
func NewServerSecurityManager() *ServerSecurityManager {
	mgr := &ServerSecurityManager{}
	var err error

	mgr.keyWriteLoader = new(keyWriteLoader)
	mgr.public, mgr.private, err = zmq4.NewCurveKeypair()

	if err != nil {
		return nil
	}

	return mgr
}

// Apply the internal keys to the endpoint socket.
// This must be called before Bind() on the socket!
// Safe to call on a nil manager (nothing happens in that case).
func (mgr *ServerSecurityManager) ApplyToServerSocket(sock *zmq4.Socket) error {
	if mgr == nil {
		return nil
	}

	if mgr.private == "" || mgr.public == "" {
		return errors.New("incomplete initialization: no key(s)")
	}

	t, err := sock.GetType()
	if err != nil {
		return err
	}
	if t != zmq4.ROUTER && t != zmq4.REP {
		return errors.New("wrong socket type (not ROUTER, REP)")
	}

	// start in any case (returns error if already running, ignore that)
	zmq4.AuthStart()

	if mgr.allowed_client_addresses != nil {
		zmq4.AuthAllow(SERVER_DOMAIN, mgr.allowed_client_addresses...)
	} else if mgr.denied_client_addresses != nil {
		zmq4.AuthDeny(SERVER_DOMAIN, mgr.denied_client_addresses...)
	}

	if mgr.allowed_client_keys != nil {
		zmq4.AuthCurveAdd(SERVER_DOMAIN, mgr.allowed_client_keys...)
	} else {
		// Make it open
		zmq4.AuthCurveAdd(SERVER_DOMAIN, zmq4.CURVE_ALLOW_ANY)
	}

	return sock.ServerAuthCurve(SERVER_DOMAIN, mgr.private)
}

// Tear down all resources associated with authentication
func (mgr *ServerSecurityManager) StopManager() {
	zmq4.AuthStop()
}

// Set the public and private keys of the endpoint.
func (mgr *ServerSecurityManager) SetKeys(public, private string) {
	mgr.public, mgr.private = public, private
}

func (mgr *ServerSecurityManager) GetPublicKey() string {
	return mgr.public
}

// Add keys of clients that are accepted.
func (mgr *ServerSecurityManager) AddClientKeys(keys ...string) {
	mgr.allowed_client_keys = append(mgr.allowed_client_keys, keys...)
}

// Remove all clients from the whitelist, effectively enforcing an OPEN policy
func (mgr *ServerSecurityManager) ResetClientKeys() {
	mgr.allowed_client_keys = nil
}

// Remove all clients from the address lists, effectively enforcing an OPEN policy
func (mgr *ServerSecurityManager) ResetBlackWhiteLists() {
	mgr.allowed_client_addresses = nil
	mgr.denied_client_addresses = nil
}

// Add clients (IP addresses or ranges) to the whitelist. A whitelist is mutually exclusive with a blacklist, meaning
// that all blacklisted clients are removed when calling this function.
func (mgr *ServerSecurityManager) WhitelistClients(addrs ...string) {
	mgr.denied_client_addresses = nil
	mgr.allowed_client_addresses = append(mgr.allowed_client_addresses, addrs...)
}

// Add clients (IP addresses or ranges) to the blacklist. A blacklist is mutually exclusive with a
// whitelist, meaning that all whitelisted clients are removed when calling this function.
func (mgr *ServerSecurityManager) BlacklistClients(addrs ...string) {
	mgr.allowed_client_addresses = nil
	mgr.denied_client_addresses = append(mgr.denied_client_addresses, addrs...)
}
