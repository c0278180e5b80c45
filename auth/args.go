package auth

import "github.com/viant/omnibar/auth/store"

// TokenArgs describes a token lookup. ForceNewToken and DisableRedirect change
// behaviour but not cache identity.
type TokenArgs struct {
	ForceNewToken   bool   `json:"forceNewToken,omitempty"`
	DisableRedirect bool   `json:"disableRedirect,omitempty"`
	EnvironmentID   string `json:"envId,omitempty"`
	PermissionScope string `json:"permissionScope,omitempty"`
	LegalEntityID   string `json:"leId,omitempty"`
}

// Force is the boolean shortcut form of a lookup.
func Force(forceNewToken bool) *TokenArgs {
	return &TokenArgs{ForceNewToken: forceNewToken}
}

// Normalize returns a non-nil copy of args.
func Normalize(args *TokenArgs) TokenArgs {
	if args == nil {
		return TokenArgs{}
	}
	return *args
}

// Validate reports PermissionScopeNoEnvironment when a permission scope is
// requested without an environment or legal entity.
func (a TokenArgs) Validate() error {
	if a.PermissionScope != "" && a.EnvironmentID == "" && a.LegalEntityID == "" {
		return NewError(PermissionScopeNoEnvironment, "You must also specify an environment or legal entity when specifying a permission scope.")
	}
	return nil
}

// Key returns the cache key for the lookup.
func Key(args TokenArgs) store.TokenKey {
	key := store.DefaultKey
	if args.EnvironmentID != "" {
		key.EnvironmentID = args.EnvironmentID
	}
	if args.PermissionScope != "" {
		key.PermissionScope = args.PermissionScope
	}
	return key
}
