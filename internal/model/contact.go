package model

// Contact is an address book entry owned by a wallet address
type Contact struct {
	ID             string `json:"_id,omitempty"`
	WalletAddress  string `json:"walletAddress"`
	ContactName    string `json:"contactName"`
	ContactAddress string `json:"contactAddress"`
}

// ContactRequest represents request for POST /contacts
type ContactRequest struct {
	ContactName    string `json:"contactName"`
	ContactAddress string `json:"contactAddress"`
}
