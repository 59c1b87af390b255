package transfer

type SelectionSubmit struct {
	PageIDs          []string `json:"page_ids"`
	LinkedAccountIDs []string `json:"linked_account_ids"`
}

type SelectionResult struct {
	ConnectionID  int64 `json:"connection_id"`
	PagesSaved    int   `json:"pages_saved"`
	AccountsSaved int   `json:"accounts_saved"`
}
