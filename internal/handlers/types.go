package handlers

import "time"

// ShortenRequest is the request body for shortening a URL.
type ShortenRequest struct {
	Body struct {
		LongURL string `doc:"The URL to shorten" example:"https://example.com/very/long/path" json:"longUrl" maxLength:"2048" minLength:"1"`
	}
}

// ShortenResponse is the response for an authenticated shorten call.
type ShortenResponse struct {
	Location string `doc:"The short URL location" header:"Location"`
	Body     struct {
		Code     string `doc:"The short code"                          example:"b"                                  json:"code"`
		ShortURL string `doc:"The full short URL"                      example:"http://localhost:8888/b"            json:"shortUrl"`
		LongURL  string `doc:"The original URL"                        example:"https://example.com/very/long/path" json:"longUrl"`
		Created  bool   `doc:"False when the URL was already shortened" json:"created"`
	}
}

// ShortenPublicResponse is the response for an anonymous shorten call.
type ShortenPublicResponse struct {
	Body struct {
		Status   string `example:"success"                 json:"status"`
		Code     string `example:"b"                       json:"code"`
		ShortURL string `example:"http://localhost:8888/b" json:"shortUrl"`
	}
}

// CodeRequest addresses a short link by code.
type CodeRequest struct {
	Code string `doc:"The short code" example:"b" maxLength:"16" path:"code"`
}

// RedirectResponse sends the caller to the long URL, or to the fallback.
type RedirectResponse struct {
	Status   int
	Location string `header:"Location"`
}

// QRCodeResponse is a PNG image.
type QRCodeResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// LinkView is one owned link.
type LinkView struct {
	Code      string    `json:"code"`
	ShortURL  string    `json:"shortUrl"`
	LongURL   string    `json:"longUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListLinksResponse lists the caller's links.
type ListLinksResponse struct {
	Body struct {
		Links []LinkView `json:"links"`
	}
}

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Body struct {
		Username    string `example:"alice"  json:"username"    maxLength:"64"  minLength:"1"`
		Password    string `example:"s3cret" json:"password"    maxLength:"72"  minLength:"1"`
		DisplayName string `example:"Alice"  json:"displayName" maxLength:"128" minLength:"1"`
	}
}

// AccountView is the public shape of an account. It never carries the credential hash.
type AccountView struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AccountResponse wraps an AccountView.
type AccountResponse struct {
	Body AccountView
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Body struct {
		Username string `example:"alice"  json:"username" minLength:"1"`
		Password string `example:"s3cret" json:"password" minLength:"1"`
	}
}

// LoginResponse carries an issued bearer token.
type LoginResponse struct {
	Body struct {
		Status    string    `example:"success" json:"status"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
}

// UpdateAccountRequest changes the caller's display name and/or password.
type UpdateAccountRequest struct {
	Body struct {
		DisplayName     string `json:"displayName,omitempty"     maxLength:"128" required:"false"`
		CurrentPassword string `json:"currentPassword,omitempty" required:"false"`
		NewPassword     string `json:"newPassword,omitempty"     maxLength:"72"  required:"false"`
	}
}

// TestResponse is the diagnostic echo.
type TestResponse struct {
	Body struct {
		Test    string `example:"success" json:"test"`
		Subject string `example:"alice"   json:"subject"`
	}
}

// IndexResponse lists the service endpoints.
type IndexResponse struct {
	Body struct {
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Docs      string   `json:"docs"`
		Links     int64    `doc:"Number of stored short links" json:"links"`
		Endpoints []string `json:"endpoints"`
	}
}
