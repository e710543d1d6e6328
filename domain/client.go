package domain

import "time"

// GrantTypeAuthorizationCode is the only grant this core issues tokens for.
const GrantTypeAuthorizationCode = "authorization_code"

// OAuthClient represents a registered client application. Records are
// immutable and sourced from the client registry.
type OAuthClient struct {
	ID           string    `json:"id" bson:"_id"`
	ClientID     string    `json:"client_id" bson:"client_id"`
	ClientSecret string    `json:"-" bson:"client_secret,omitempty"`
	ClientName   string    `json:"client_name" bson:"client_name"`
	RedirectURIs []string  `json:"redirect_uris" bson:"redirect_uris"`
	GrantTypes   []string  `json:"grant_types" bson:"grant_types"`
	IsPublic     bool      `json:"is_public" bson:"is_public"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// HasRedirectURI reports whether uri is an exact member of the registered
// redirect set. No prefix or pattern matching.
func (c *OAuthClient) HasRedirectURI(uri string) bool {
	for _, registered := range c.RedirectURIs {
		if registered == uri {
			return true
		}
	}
	return false
}

// HasGrantType reports whether the client may use the given grant.
func (c *OAuthClient) HasGrantType(grant string) bool {
	for _, g := range c.GrantTypes {
		if g == grant {
			return true
		}
	}
	return false
}

// PublicClient is the secret-free projection handed to callers after
// validation.
type PublicClient struct {
	ClientID     string   `json:"client_id"`
	ClientName   string   `json:"client_name"`
	IsPublic     bool     `json:"is_public"`
	RedirectURIs []string `json:"redirect_uris"`
	GrantTypes   []string `json:"grant_types"`
}

// Public returns the client's public fields, never the secret.
func (c *OAuthClient) Public() PublicClient {
	return PublicClient{
		ClientID:     c.ClientID,
		ClientName:   c.ClientName,
		IsPublic:     c.IsPublic,
		RedirectURIs: c.RedirectURIs,
		GrantTypes:   c.GrantTypes,
	}
}
