package epso

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rowTemplate = `
<tr>
  <td class="views-field views-field-title"><a href="%s">  %s </a></td>
  <td class="views-field views-field-field-epso-domain">Economics</td>
  <td class="views-field views-field-field-epso-grade"> AD 5 </td>
  <td class="views-field views-field-field-epso-institution-id">European
     Commission</td>
  <td class="views-field views-field-field-epso-locations">Brussels (Belgium)</td>
  <td class="views-field views-field-field-epso-deadline">01/01/2024 - 12:00</td>
</tr>`

func listingPage(next bool, rows ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><table class="views-table"><thead><tr><th>Title</th></tr></thead><tbody>`)
	for _, r := range rows {
		b.WriteString(r)
	}
	b.WriteString(`</tbody></table>`)
	if next {
		b.WriteString(`<nav><ul><li class="pager__item pager__item--next"><a href="?page=1">Next</a></li></ul></nav>`)
	}
	b.WriteString(`</body></html>`)
	return b.String()
}

func TestParser_HasResultsTable(t *testing.T) {
	p := NewParser(ParserConfig{})

	assert.True(t, p.HasResultsTable(listingPage(false)))
	assert.False(t, p.HasResultsTable(`<html><body><p>Sorry, there are no jobs</p></body></html>`))
}

func TestParser_ExtractRows(t *testing.T) {
	p := NewParser(ParserConfig{})
	raw := listingPage(true,
		fmt.Sprintf(rowTemplate, "/en/job/1", "Policy\n Officer"),
		fmt.Sprintf(rowTemplate, "/en/job/2", "Café Manager"),
	)

	page, err := p.Parse(raw)
	require.NoError(t, err)

	rows, err := page.ExtractRows()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{
		Title:       "Policy Officer",
		Href:        "/en/job/1",
		Domain:      "Economics",
		Grade:       "AD 5",
		Institution: "European Commission",
		Location:    "Brussels (Belgium)",
		Deadline:    "01/01/2024 - 12:00",
	}, rows[0])
	assert.Equal(t, "Café Manager", rows[1].Title)
	assert.True(t, page.HasNextPageLink())
}

func TestParser_NoNextLink(t *testing.T) {
	page, err := NewParser(ParserConfig{}).Parse(listingPage(false, fmt.Sprintf(rowTemplate, "/a", "A")))
	require.NoError(t, err)
	assert.False(t, page.HasNextPageLink())
}

func TestParser_RelNextFallback(t *testing.T) {
	raw := listingPage(false) + `<a rel="next" href="?page=2">more</a>`
	page, err := NewParser(ParserConfig{}).Parse(raw)
	require.NoError(t, err)
	assert.True(t, page.HasNextPageLink())
}

func TestParser_MissingFieldFailsLoudly(t *testing.T) {
	broken := strings.Replace(fmt.Sprintf(rowTemplate, "/en/job/9", "Broken"),
		`<td class="views-field views-field-field-epso-grade"> AD 5 </td>`, "", 1)

	page, err := NewParser(ParserConfig{}).Parse(listingPage(false, fmt.Sprintf(rowTemplate, "/ok", "Ok"), broken))
	require.NoError(t, err)

	_, err = page.ExtractRows()
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Row)
	assert.Equal(t, "grade", fe.Field)
}

func TestParser_MissingHref(t *testing.T) {
	row := strings.Replace(fmt.Sprintf(rowTemplate, "", "No link"), ` href=""`, "", 1)

	page, err := NewParser(ParserConfig{}).Parse(listingPage(false, row))
	require.NoError(t, err)

	_, err = page.ExtractRows()
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "href", fe.Field)
}

func TestClient_PageURL(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "https://example.org/jobs?sort=asc"})
	require.NoError(t, err)

	u, err := c.PageURL(Target{Query: map[string]string{"type": "permanent"}}, 3)
	require.NoError(t, err)
	assert.Equal(t, "https://example.org/jobs?page=3&sort=asc&type=permanent", u)

	u, err = c.PageURL(Target{URL: "https://other.org/list?page=9"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://other.org/list?page=0", u)
}

func TestClient_FetchPage(t *testing.T) {
	var gotPage, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("p")
		gotAgent = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("<table></table>"))
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, PageParam: "p", HTTPClient: srv.Client()})
	require.NoError(t, err)

	body, err := c.FetchPage(context.Background(), Target{}, 4)
	require.NoError(t, err)
	assert.Equal(t, "<table></table>", body)
	assert.Equal(t, "4", gotPage)
	assert.Equal(t, defaultUserAgent, gotAgent)
}

func TestClient_FetchPageNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.FetchPage(context.Background(), Target{}, 0)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
}

func TestClient_FetchPageRejectsNegativeIndex(t *testing.T) {
	c, err := NewClient(Config{})
	require.NoError(t, err)

	_, err = c.FetchPage(context.Background(), Target{}, -1)
	assert.Error(t, err)
}
