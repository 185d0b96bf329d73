package out

import (
	"context"
	"net/http"
	"strings"

	"caltrack/internal/modules/account/domain"
	accountout "caltrack/internal/modules/account/port/out"
	"caltrack/internal/platform/httpapi"
)

type HTTPAccountAPI struct {
	client *httpapi.Client
}

func NewHTTPAccountAPI(client *httpapi.Client) accountout.AccountAPI {
	return &HTTPAccountAPI{client: client}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Older backends name the credential "token" instead of "jwt".
type loginResponse struct {
	JWT             string `json:"jwt"`
	Token           string `json:"token"`
	ProfileComplete bool   `json:"profileComplete"`
}

func (a *HTTPAccountAPI) Login(ctx context.Context, email, password string) (domain.LoginResult, error) {
	var resp loginResponse
	err := a.client.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/user/login",
		Body:   loginRequest{Email: email, Password: password},
	}, &resp)
	if err != nil {
		return domain.LoginResult{}, err
	}
	token := strings.TrimSpace(resp.JWT)
	if token == "" {
		token = strings.TrimSpace(resp.Token)
	}
	return domain.LoginResult{JWT: token, ProfileComplete: resp.ProfileComplete}, nil
}

type registerRequest struct {
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName,omitempty"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password"`
}

func (a *HTTPAccountAPI) Register(ctx context.Context, r domain.Registration) error {
	return a.client.Do(ctx, httpapi.Request{
		Method: http.MethodPost,
		Path:   "/user/register",
		Body: registerRequest{
			FirstName:   r.FirstName,
			MiddleName:  r.MiddleName,
			LastName:    r.LastName,
			Email:       r.Email,
			PhoneNumber: r.PhoneNumber,
			Password:    r.Password,
		},
	}, nil)
}

type detailsResponse struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Email       string  `json:"email"`
	PhoneNumber *string `json:"phoneNumber"`
}

func (a *HTTPAccountAPI) Details(ctx context.Context) (domain.UserDetails, error) {
	var resp detailsResponse
	if err := a.client.Do(ctx, httpapi.Request{Method: http.MethodGet, Path: "/user/details", Auth: true}, &resp); err != nil {
		return domain.UserDetails{}, err
	}
	details := domain.UserDetails{FirstName: resp.FirstName, LastName: resp.LastName, Email: resp.Email}
	if resp.PhoneNumber != nil {
		details.PhoneNumber = *resp.PhoneNumber
	}
	return details, nil
}

func (a *HTTPAccountAPI) UpdatePhone(ctx context.Context, phoneNumber string) error {
	return a.client.Do(ctx, httpapi.Request{
		Method: http.MethodPut,
		Path:   "/user/update-phone",
		Body:   map[string]string{"phoneNumber": phoneNumber},
		Auth:   true,
	}, nil)
}

func (a *HTTPAccountAPI) UpdatePassword(ctx context.Context, password string) error {
	return a.client.Do(ctx, httpapi.Request{
		Method: http.MethodPut,
		Path:   "/user/update-password",
		Body:   map[string]string{"password": password},
		Auth:   true,
	}, nil)
}
