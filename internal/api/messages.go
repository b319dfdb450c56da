package api

import (
	"time"

	"github.com/dmitrijs2005/clientbook/internal/models"
	"github.com/shopspring/decimal"
)

type Empty struct{}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse is returned by every call that establishes a session.
type AuthResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

type ClientList struct {
	Clients []models.Client `json:"clients"`
}

type EntryList struct {
	Entries []models.Entry `json:"entries"`
}

type InsertClientRequest struct {
	Name string `json:"name"`
}

type UpdateClientRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ClientResponse struct {
	Client models.Client `json:"client"`
}

type IDRequest struct {
	ID string `json:"id"`
}

type InsertEntryRequest struct {
	ClientID    string          `json:"client_id"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
}

type EntryResponse struct {
	Entry models.Entry `json:"entry"`
}

type DeleteClientEntriesRequest struct {
	ClientID string `json:"client_id"`
}

type DeletedResponse struct {
	Count int `json:"count"`
}

type ExportUploadRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// ExportUploadResponse carries presigned URLs for sharing an export file.
type ExportUploadResponse struct {
	Key         string    `json:"key"`
	UploadURL   string    `json:"upload_url"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type SubscribeRequest struct {
	Table models.Table `json:"table"`
}
