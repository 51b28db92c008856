package epso

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"
)

// DefaultParserConfig returns selectors for the EU careers "open for application" table
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		TableMarker:      "</table>",
		RowSelector:      "table tbody tr",
		TitleSelector:    "td.views-field-title a",
		DomainSelector:   "td.views-field-field-epso-domain",
		GradeSelector:    "td.views-field-field-epso-grade",
		InstitutionSel:   "td.views-field-field-epso-institution-id",
		LocationSelector: "td.views-field-field-epso-locations",
		DeadlineSelector: "td.views-field-field-epso-deadline",
		NextSelectors:    []string{"li.pager__item--next a", "a[rel=next]"},
	}
}

// Parser extracts job rows from listing pages
type Parser struct {
	cfg ParserConfig
}

// NewParser builds a parser; zero-valued selectors fall back to the defaults
func NewParser(cfg ParserConfig) *Parser {
	def := DefaultParserConfig()

	if cfg.TableMarker == "" {
		cfg.TableMarker = def.TableMarker
	}
	if cfg.RowSelector == "" {
		cfg.RowSelector = def.RowSelector
	}
	if cfg.TitleSelector == "" {
		cfg.TitleSelector = def.TitleSelector
	}
	if cfg.DomainSelector == "" {
		cfg.DomainSelector = def.DomainSelector
	}
	if cfg.GradeSelector == "" {
		cfg.GradeSelector = def.GradeSelector
	}
	if cfg.InstitutionSel == "" {
		cfg.InstitutionSel = def.InstitutionSel
	}
	if cfg.LocationSelector == "" {
		cfg.LocationSelector = def.LocationSelector
	}
	if cfg.DeadlineSelector == "" {
		cfg.DeadlineSelector = def.DeadlineSelector
	}
	if len(cfg.NextSelectors) == 0 {
		cfg.NextSelectors = def.NextSelectors
	}

	return &Parser{cfg: cfg}
}

// HasResultsTable is a textual check that avoids building a DOM for empty pages
func (p *Parser) HasResultsTable(raw string) bool {
	return strings.Contains(raw, p.cfg.TableMarker)
}

// Parse builds a document for the page markup
func (p *Parser) Parse(raw string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("epso: parse document: %w", err)
	}
	return &Page{doc: doc, cfg: p.cfg}, nil
}

// Page is a parsed listing page
type Page struct {
	doc *goquery.Document
	cfg ParserConfig
}

// HasNextPageLink reports whether the pager offers a next page
func (pg *Page) HasNextPageLink() bool {
	for _, sel := range pg.cfg.NextSelectors {
		if pg.doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// ExtractRows returns the result rows in page order. A row lacking any expected
// column fails the whole page with *FieldError.
func (pg *Page) ExtractRows() ([]Row, error) {
	var (
		rows []Row
		err  error
	)

	index := 0
	pg.doc.Find(pg.cfg.RowSelector).EachWithBreak(func(_ int, tr *goquery.Selection) bool {
		if tr.Find("td").Length() == 0 {
			return true
		}

		var row Row
		row, err = pg.extractRow(index, tr)
		if err != nil {
			return false
		}

		rows = append(rows, row)
		index++
		return true
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func (pg *Page) extractRow(index int, tr *goquery.Selection) (Row, error) {
	link := tr.Find(pg.cfg.TitleSelector).First()
	if link.Length() == 0 {
		return Row{}, &FieldError{Row: index, Field: "title"}
	}

	title := cleanText(link.Text())
	if title == "" {
		return Row{}, &FieldError{Row: index, Field: "title"}
	}

	href, ok := link.Attr("href")
	href = strings.TrimSpace(href)
	if !ok || href == "" {
		return Row{}, &FieldError{Row: index, Field: "href"}
	}

	row := Row{Title: title, Href: href}

	cells := []struct {
		name     string
		selector string
		dst      *string
	}{
		{"domain", pg.cfg.DomainSelector, &row.Domain},
		{"grade", pg.cfg.GradeSelector, &row.Grade},
		{"institution", pg.cfg.InstitutionSel, &row.Institution},
		{"location", pg.cfg.LocationSelector, &row.Location},
		{"deadline", pg.cfg.DeadlineSelector, &row.Deadline},
	}

	for _, c := range cells {
		cell := tr.Find(c.selector).First()
		if cell.Length() == 0 {
			return Row{}, &FieldError{Row: index, Field: c.name}
		}
		*c.dst = cleanText(cell.Text())
	}

	return row, nil
}

// cleanText collapses whitespace and normalises to NFC so equal text always
// yields the same canonical line
func cleanText(s string) string {
	return norm.NFC.String(strings.Join(strings.Fields(s), " "))
}
