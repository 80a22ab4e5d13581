package securitymanager

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteLoadServer(t *testing.T) {
	mgr := NewServerSecurityManager()
	dir := t.TempDir()
	pub, priv := filepath.Join(dir, "health.pub"), filepath.Join(dir, "health.key")

	if err := mgr.WriteKeys(pub, priv); err != nil {
		t.Fatal(err)
	}

	loaded := &ServerSecurityManager{keyWriteLoader: new(keyWriteLoader)}
	if err := loaded.LoadKeys(pub, priv); err != nil {
		t.Fatal(err)
	}
	if loaded.public != mgr.public || loaded.private != mgr.private {
		t.Error("Loaded keys differ from written keys")
	}

	st, err := os.Stat(priv)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0600 {
		t.Errorf("Private key file has mode %v", st.Mode().Perm())
	}
}

func TestLoadTrimsNewline(t *testing.T) {
	mgr := NewServerSecurityManager()
	pub := filepath.Join(t.TempDir(), "health.pub")

	if err := os.WriteFile(pub, []byte(mgr.GetPublicKey()+"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cmgr := NewClientSecurityManager()
	if err := cmgr.LoadServerPubkey(pub); err != nil {
		t.Fatal(err)
	}
	if cmgr.serverPublic != mgr.GetPublicKey() {
		t.Error("Wrong server key loaded")
	}
}

func TestLoadRejectsBadKey(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.pub")
	if err := os.WriteFile(bad, []byte("short"), 0600); err != nil {
		t.Fatal(err)
	}

	mgr := NewClientSecurityManager()
	if err := mgr.LoadServerPubkey(bad); err == nil {
		t.Error("Short key was accepted")
	}
	if err := mgr.LoadServerPubkey(bad + ".missing"); err == nil {
		t.Error("Missing file was accepted")
	}
}

func TestWriteOnlyPublic(t *testing.T) {
	mgr := NewServerSecurityManager()
	dir := t.TempDir()
	pub := filepath.Join(dir, "health.pub")

	if err := mgr.WriteKeys(pub, DONOTWRITE); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the public key file, got %d files", len(entries))
	}
}

func TestKeyMgmt(t *testing.T) {
	mgr := NewServerSecurityManager()

	mgr.AddClientKeys("a", "b", "c")

	if mgr.allowed_client_keys == nil || len(mgr.allowed_client_keys) != 3 {
		t.Error("List of client keys is incorrect")
		return
	}

	mgr.ResetClientKeys()

	if mgr.allowed_client_keys != nil {
		t.Error("ResetClientKeys() does not work.")
	}
}

func TestListingExclusive(t *testing.T) {
	mgr := NewServerSecurityManager()

	mgr.WhitelistClients("a", "b", "c")

	if mgr.allowed_client_addresses == nil || len(mgr.allowed_client_addresses) != 3 {
		t.Error("Whitelist of clients is not correct.")
		return
	}

	mgr.BlacklistClients("d", "e", "f")

	if mgr.allowed_client_addresses != nil {
		t.Error("Whitelist was not reset")
	}
	if mgr.denied_client_addresses == nil || len(mgr.denied_client_addresses) != 3 {
		t.Error("Blacklist of clients is not correct")
		return
	}
}

func TestExplicitKeys(t *testing.T) {
	mgr := NewServerSecurityManager()

	mgr.SetKeys("pub", "priv")

	if mgr.GetPublicKey() != "pub" {
		t.Error("Wrong public key returned")
	}

	if mgr.public != "pub" || mgr.private != "priv" {
		t.Error("Wrong internal keys")
	}
}

func TestIncompleteKeysRefused(t *testing.T) {
	mgr := NewClientSecurityManager()
	// no server key
	if err := mgr.ApplyToClientSocket(nil); err == nil {
		t.Error("Client socket set up without server key")
	}

	var nilmgr *ServerSecurityManager
	if err := nilmgr.ApplyToServerSocket(nil); err != nil {
		t.Error("nil manager must be a no-op")
	}
}
