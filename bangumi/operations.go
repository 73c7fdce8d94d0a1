package bangumi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// searchRequest is the POST body of the search endpoints
type searchRequest struct {
	Keyword string `json:"keyword"`
}

// Search runs a keyword search for subjects, characters or persons.
// Successful pages are cached per (kind, keyword, limit).
func (c *Client) Search(ctx context.Context, kind Kind, keyword string, limit int) (*Page, error) {
	if !kind.Searchable() {
		return nil, fmt.Errorf("%w: %q has no search endpoint", ErrValidation, kind)
	}
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", ErrValidation)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrValidation, limit)
	}

	key := fmt.Sprintf("search:%s:%s:%d", kind, keyword, limit)
	page, hit, err := c.cache.GetOrFetch(ctx, key, func(ctx context.Context) (*Page, error) {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(limit))

		body, err := c.doRequest(ctx, http.MethodPost, "/v0/search/"+kind.collection(), params, searchRequest{Keyword: keyword})
		if err != nil {
			return nil, err
		}
		return parsePage(body)
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("kind", string(kind)).
		Str("keyword", keyword).
		Int("limit", limit).
		Int("count", len(page.Data)).
		Int("total", page.Total).
		Bool("cached", hit).
		Msg("Bangumi search")

	return page, nil
}

// SearchSubjects searches subjects by keyword
func (c *Client) SearchSubjects(ctx context.Context, keyword string, limit int) (*Page, error) {
	return c.Search(ctx, KindSubject, keyword, limit)
}

// SearchCharacters searches characters by keyword
func (c *Client) SearchCharacters(ctx context.Context, keyword string, limit int) (*Page, error) {
	return c.Search(ctx, KindCharacter, keyword, limit)
}

// SearchPersons searches persons by keyword
func (c *Client) SearchPersons(ctx context.Context, keyword string, limit int) (*Page, error) {
	return c.Search(ctx, KindPerson, keyword, limit)
}

// Get fetches the full detail payload of one subject, character or person
func (c *Client) Get(ctx context.Context, kind Kind, id int64) (Entity, error) {
	if !kind.Searchable() {
		return Entity{}, fmt.Errorf("%w: %q cannot be fetched by id", ErrValidation, kind)
	}
	if id <= 0 {
		return Entity{}, fmt.Errorf("%w: id must be positive, got %d", ErrValidation, id)
	}
	return c.getEntity(ctx, fmt.Sprintf("/v0/%s/%d", kind.collection(), id))
}

// GetSubject fetches a subject by id
func (c *Client) GetSubject(ctx context.Context, id int64) (Entity, error) {
	return c.Get(ctx, KindSubject, id)
}

// GetCharacter fetches a character by id
func (c *Client) GetCharacter(ctx context.Context, id int64) (Entity, error) {
	return c.Get(ctx, KindCharacter, id)
}

// GetPerson fetches a person by id
func (c *Client) GetPerson(ctx context.Context, id int64) (Entity, error) {
	return c.Get(ctx, KindPerson, id)
}

// GetUser fetches a user by username
func (c *Client) GetUser(ctx context.Context, username string) (Entity, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return Entity{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	return c.getEntity(ctx, "/v0/users/"+url.PathEscape(username))
}

// Resolve turns a free-text query into one detailed entity. An all-digit
// query is an id; anything else is searched and the first hit fetched,
// because search results only carry summary fields. For users the query
// is the username.
func (c *Client) Resolve(ctx context.Context, kind Kind, query string) (Entity, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Entity{}, fmt.Errorf("%w: query is required", ErrValidation)
	}

	if kind == KindUser {
		return c.GetUser(ctx, query)
	}

	if IsNumericID(query) {
		id, err := strconv.ParseInt(query, 10, 64)
		if err != nil {
			return Entity{}, fmt.Errorf("%w: id %q out of range", ErrValidation, query)
		}
		return c.Get(ctx, kind, id)
	}

	page, err := c.Search(ctx, kind, query, 1)
	if err != nil {
		return Entity{}, err
	}
	if page.IsEmpty() {
		return Entity{}, fmt.Errorf("%w: no %s matches %q", ErrNotFound, kind, query)
	}

	return c.Get(ctx, kind, page.Data[0].ID())
}

// IsNumericID reports whether s consists only of ASCII decimal digits
func IsNumericID(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
