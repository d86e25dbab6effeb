package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"hotel-curator/internal/adapter/rest"
	"hotel-curator/internal/domain"
)

type searchOptions struct {
	region    int64
	checkin   string
	checkout  string
	adults    int
	children  []int
	rooms     int
	residency string
	currency  string
	language  string
	minPrice  float64
	maxPrice  float64
	prefs     string
	top       int
	limit     int
	json      bool
}

func (o searchOptions) request() domain.SearchRequest {
	req := domain.SearchRequest{
		RegionID:        o.region,
		Checkin:         o.checkin,
		Checkout:        o.checkout,
		Residency:       o.residency,
		Currency:        o.currency,
		Language:        o.language,
		UserPreferences: o.prefs,
		TopHotels:       o.top,
		HotelsLimit:     o.limit,
	}
	for i := 0; i < max(o.rooms, 1); i++ {
		req.Guests = append(req.Guests, domain.GuestRoom{Adults: o.adults, Children: o.children})
	}
	if o.minPrice > 0 {
		v := o.minPrice
		req.MinPricePerNight = &v
	}
	if o.maxPrice > 0 {
		v := o.maxPrice
		req.MaxPricePerNight = &v
	}
	return req
}

func newSearchCommand(env *environment) *cobra.Command {
	opts := &searchOptions{}
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run a curated hotel search",
		Long: `Search a region, narrow the results and rank the shortlist against your
preferences. Progress is printed as each pipeline stage runs.

Examples:
  hotelctl search --region 2395 --checkin 2025-07-01 --checkout 2025-07-04
  hotelctl search --region 2395 --checkin 2025-07-01 --checkout 2025-07-04 \
    --adults 2 --children 7 --max-price 8000 --prefs "near the beach" --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, env, opts)
		},
	}

	f := cmd.Flags()
	f.Int64Var(&opts.region, "region", 0, "inventory region id (see hotelctl regions)")
	f.StringVar(&opts.checkin, "checkin", "", "check-in date, YYYY-MM-DD")
	f.StringVar(&opts.checkout, "checkout", "", "check-out date, YYYY-MM-DD")
	f.IntVar(&opts.adults, "adults", 2, "adults per room")
	f.IntSliceVar(&opts.children, "children", nil, "child ages per room, e.g. 5,9")
	f.IntVar(&opts.rooms, "rooms", 1, "number of identical rooms")
	f.StringVar(&opts.residency, "residency", "ru", "guest residency, ISO 3166 alpha-2 lowercase")
	f.StringVar(&opts.currency, "currency", "", "ISO 4217 currency")
	f.StringVar(&opts.language, "language", "", "content language (default ru)")
	f.Float64Var(&opts.minPrice, "min-price", 0, "minimum price per night")
	f.Float64Var(&opts.maxPrice, "max-price", 0, "maximum price per night")
	f.StringVar(&opts.prefs, "prefs", "", "free-text preferences")
	f.IntVar(&opts.top, "top", domain.DefaultTopHotels, "number of hotels to return")
	f.IntVar(&opts.limit, "limit", 0, "inventory hotels limit")
	f.BoolVar(&opts.json, "json", false, "print the final results as JSON")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("checkin")
	_ = cmd.MarkFlagRequired("checkout")
	return cmd
}

func runSearch(cmd *cobra.Command, env *environment, opts *searchOptions) error {
	p, err := env.printer(cmd)
	if err != nil {
		return err
	}
	req := opts.request()
	if err := rest.NewValidator().Validate(&req); err != nil {
		var verr *rest.ValidationError
		if errors.As(err, &verr) {
			for field, msg := range verr.Errors {
				p.Error("%s: %s", field, msg)
			}
		}
		return err
	}

	app, err := env.app(cmd)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	var (
		done     *domain.DonePayload
		failure  *domain.ErrorPayload
		renderer = newProgressRenderer(p)
	)
	for ev := range app.SearchStream.Stream(ctx, req) {
		renderer.render(ev)
		switch payload := ev.Payload.(type) {
		case domain.DonePayload:
			done = &payload
		case domain.ErrorPayload:
			failure = &payload
		}
	}

	switch {
	case failure != nil:
		return fmt.Errorf("search failed at %s: %s (%s)", failure.Stage, failure.ErrorMessage, failure.ErrorType)
	case done == nil:
		return errors.New("search interrupted")
	case opts.json:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(done)
	default:
		if err := renderResults(p, done.Results); err != nil {
			return err
		}
		renderSummary(p, done.Summary)
		return nil
	}
}
