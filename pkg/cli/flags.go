package cli

import (
	"fmt"

	"ads-harvest/pkg/dates"
	"ads-harvest/pkg/query"

	"github.com/spf13/cobra"
)

// rangeFlags holds the raw --fromdate/--todate values.
type rangeFlags struct {
	from, to string
}

func addRangeFlags(cmd *cobra.Command, r *rangeFlags) {
	cmd.Flags().StringVar(&r.from, "fromdate", "", "Start date, dd.mm.yyyy (required)")
	cmd.Flags().StringVar(&r.to, "todate", "", "End date, dd.mm.yyyy (required)")
	_ = cmd.MarkFlagRequired("fromdate")
	_ = cmd.MarkFlagRequired("todate")
}

// parse validates both dates and their order without touching the network.
func (r rangeFlags) parse() (dates.Date, dates.Date, error) {
	from, err := dates.ParseDate(r.from)
	if err != nil {
		return dates.Date{}, dates.Date{}, fmt.Errorf("--fromdate: %w", err)
	}
	to, err := dates.ParseDate(r.to)
	if err != nil {
		return dates.Date{}, dates.Date{}, fmt.Errorf("--todate: %w", err)
	}
	if to.Before(from) {
		return dates.Date{}, dates.Date{}, fmt.Errorf("%w: %s is before %s", dates.ErrMalformedInterval, to, from)
	}
	return from, to, nil
}

func addCriteriaFlags(cmd *cobra.Command, c *query.SearchCriteria) {
	f := cmd.Flags()
	f.StringVar(&c.SearchString, "searchstring", c.SearchString, "Search term(s)")
	f.StringVar(&c.QueryType, "querytype", c.QueryType, "Exact (boolean) or fuzzy (pattern) search")
	f.StringVar(&c.TitleWeight, "titleweight", c.TitleWeight, "Weight terms in the title higher (false or on)")
	f.StringVar(&c.TitleString, "titlestring", c.TitleString, "Search term(s) in the title")
	f.StringVar(&c.VolumeNo, "volno", c.VolumeNo, "Volume number")
	f.StringVar(&c.BookletNo, "bookletno", c.BookletNo, "Booklet number")
	f.StringArrayVar(&c.DocTypes, "doctype", c.DocTypes, "Document type code (repeatable)")
	f.StringVar(&c.Category, "category", c.Category, "Text category")
	f.StringVar(&c.Council, "council", c.Council, "Council")
	f.StringVar(&c.FileNo, "fileno", c.FileNo, "Business (file) number")
	f.StringVar(&c.Author, "author", c.Author, "Author")
	f.StringVar(&c.RefNo, "refno", c.RefNo, "Text unit reference number")
	f.StringVar(&c.Lang, "lang", c.Lang, "Language code, matched as *lang*")
}

func validateCriteria(c query.SearchCriteria) error {
	switch c.QueryType {
	case query.QueryTypeBoolean, query.QueryTypePattern:
	default:
		return fmt.Errorf("--querytype must be %q or %q, got %q", query.QueryTypeBoolean, query.QueryTypePattern, c.QueryType)
	}
	switch c.TitleWeight {
	case query.TitleWeightOff, query.TitleWeightOn:
	default:
		return fmt.Errorf("--titleweight must be %q or %q, got %q", query.TitleWeightOff, query.TitleWeightOn, c.TitleWeight)
	}
	return nil
}
