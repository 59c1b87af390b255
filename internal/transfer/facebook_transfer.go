package transfer

import "time"

type FacebookToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type GraphTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type GraphError struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	Code      int    `json:"code"`
	FbtraceID string `json:"fbtrace_id"`
}

type GraphErrorResponse struct {
	Error GraphError `json:"error"`
}

type FacebookUserInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DiscoveredPage is one administrable page from me/accounts, carrying its
// page-scoped token.
type DiscoveredPage struct {
	PageID      string   `json:"page_id"`
	Name        string   `json:"name"`
	AccessToken string   `json:"access_token"`
	Tasks       []string `json:"tasks"`
}

// DiscoveredLinkedAccount references its owning page by external page id.
type DiscoveredLinkedAccount struct {
	IGUserID string `json:"ig_user_id"`
	Username string `json:"username"`
	PageID   string `json:"page_id"`
}

// DiscoveryResult holds both lists plus the user-level token so the selection
// step can persist the connection without re-running the exchange.
type DiscoveryResult struct {
	AccountID      string                    `json:"account_id"`
	AccountName    string                    `json:"account_name"`
	AccessToken    string                    `json:"access_token"`
	TokenExpiresAt time.Time                 `json:"token_expires_at"`
	Pages          []DiscoveredPage          `json:"pages"`
	LinkedAccounts []DiscoveredLinkedAccount `json:"linked_accounts"`
}
