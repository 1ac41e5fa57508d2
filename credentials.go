package gvnc

import (
	"os"
	"path/filepath"
)

// credentials is the per-connection credential cache: username,
// password, four X.509 file paths, and the "want" flags the current
// auth step has raised for each.
type credentials struct {
	username string
	password string

	caCert    string
	clientCrt string
	clientKey string
	crl       string

	wantUsername bool
	wantPassword bool
	wantClient   bool
}

// SetCredential records one credential value supplied by the host in
// response to an onAuthCredential callback.
func (c *Client) SetCredential(kind CredentialKind, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch kind {
	case CredentialUsername:
		c.creds.username = value
	case CredentialPassword:
		c.creds.password = value
	case CredentialClientName:
		c.resolveX509Paths(value)
	}
	c.sig.Broadcast()
}

// resolveX509Paths derives the default CA/client-certificate search
// paths for clientName: first under $GVNC_SYSCONFDIR/pki/{CA,<clientname>},
// falling back to $HOME/.pki/{CA,<clientname>}.
func (c *Client) resolveX509Paths(clientName string) {
	roots := []string{}
	if sysconfdir := os.Getenv("GVNC_SYSCONFDIR"); sysconfdir != "" {
		roots = append(roots, filepath.Join(sysconfdir, "pki"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, ".pki"))
	}
	findFirst := func(rel string) string {
		for _, root := range roots {
			p := filepath.Join(root, rel)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
		return ""
	}
	c.creds.caCert = findFirst(filepath.Join("CA", "cacert.pem"))
	c.creds.clientCrt = findFirst(filepath.Join(clientName, "clientcert.pem"))
	c.creds.clientKey = findFirst(filepath.Join(clientName, "private", "clientkey.pem"))
	c.creds.crl = findFirst(filepath.Join("CA", "cacrl.pem"))
}

// haveWantedCredentials reports whether every credential the current auth
// step asked for (via wantUsername/wantPassword/wantClient) has been
// supplied; used as the predicate for the engine's credential wait.
func (c *Client) haveWantedCredentials() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.creds.wantUsername && c.creds.username == "" {
		return false
	}
	if c.creds.wantPassword && c.creds.password == "" {
		return false
	}
	if c.creds.wantClient && c.creds.caCert == "" {
		return false
	}
	return true
}

func (c *Client) requestCredentials(kinds ...CredentialKind) {
	c.mu.Lock()
	for _, k := range kinds {
		switch k {
		case CredentialUsername:
			c.creds.wantUsername = true
		case CredentialPassword:
			c.creds.wantPassword = true
		case CredentialClientName:
			c.creds.wantClient = true
		}
	}
	c.mu.Unlock()
	if c.handlers.onAuthCredential != nil {
		_ = c.handlers.onAuthCredential(kinds)
	}
}

func (c *Client) clearWantedCredentials() {
	c.mu.Lock()
	c.creds.wantUsername = false
	c.creds.wantPassword = false
	c.creds.wantClient = false
	c.mu.Unlock()
}

func (c *Client) credUsername() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds.username
}

func (c *Client) credPassword() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds.password
}
