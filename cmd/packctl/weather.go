package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/packlist/backend/internal/domain"
	"github.com/pkordes/packlist/backend/internal/weather"
)

var (
	previewLat   float64
	previewLon   float64
	previewStart string
	previewEnd   string
)

func init() {
	weatherPreviewCmd.Flags().Float64Var(&previewLat, "lat", 0, "latitude in decimal degrees")
	weatherPreviewCmd.Flags().Float64Var(&previewLon, "lon", 0, "longitude in decimal degrees")
	weatherPreviewCmd.Flags().StringVar(&previewStart, "start", "", "first day, YYYY-MM-DD")
	weatherPreviewCmd.Flags().StringVar(&previewEnd, "end", "", "last day, YYYY-MM-DD")
	for _, f := range []string{"lat", "lon", "start", "end"} {
		_ = weatherPreviewCmd.MarkFlagRequired(f)
	}

	weatherCmd.AddCommand(weatherPreviewCmd, weatherSearchCmd)
	rootCmd.AddCommand(weatherCmd)
}

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Query the weather and geocoding services",
}

var weatherPreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show daily weather and the derived condition for a date range",
	Long: `Fetch weather for a location and date range the way the API does for a
trip: forecast where available, last year's archive past the horizon.

Examples:
  packctl weather preview --lat 38.72 --lon -9.14 --start 2025-06-01 --end 2025-06-07`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		start, end, err := parseRange(previewStart, previewEnd)
		if err != nil {
			return err
		}
		w := newFetcher().FetchForTrip(cmd.Context(), previewLat, previewLon, start, end)
		return printWeather(cmd.OutOrStdout(), w)
	},
}

var weatherSearchCmd = &cobra.Command{
	Use:   "search <city>",
	Short: "Look up cities by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cities := newGeocoder().Search(cmd.Context(), args[0])
		if len(cities) == 0 {
			return fmt.Errorf("no city matches %q", args[0])
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "CITY\tLAT\tLON")
		for _, c := range cities {
			fmt.Fprintf(tw, "%s\t%.4f\t%.4f\n", c.Label(), c.Latitude, c.Longitude)
		}
		return tw.Flush()
	},
}

func weatherClient() *http.Client {
	return &http.Client{Timeout: cfg.WeatherTimeout}
}

func newFetcher() *weather.Fetcher {
	meteo := weather.NewOpenMeteo(cfg.ForecastURL, cfg.ArchiveURL, weatherClient(), logger)
	return weather.NewFetcher(meteo,
		weather.WithLocation(cfg.WeatherTimezone),
		weather.WithHorizonDays(cfg.ForecastHorizonDays),
	)
}

func newGeocoder() *weather.Geocoder {
	return weather.NewGeocoder(cfg.GeocodingURL, weatherClient(), cfg.GeocodeRPS, logger)
}

func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := domain.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	e, err := domain.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, errors.New("--end must not be before --start")
	}
	return s, e, nil
}

func printWeather(out io.Writer, w weather.TripWeather) error {
	if !w.DataAvailable {
		fmt.Fprintln(out, "weather data unavailable")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\t\tMAX\tMIN\tRAIN\tSOURCE")
	for _, d := range w.Days {
		source := "forecast"
		if d.IsHistorical {
			source = "last year"
		}
		rain := "-"
		if weather.IsRainyDay(d) {
			rain = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s %s\t%.1f\t%.1f\t%s\t%s\n",
			d.Date.Format(domain.DateLayout), weather.Icon(d.WeatherCode), weather.Description(d.WeatherCode),
			d.TempMax, d.TempMin, rain, source)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if c, ok := weather.DeriveCondition(w); ok {
		fmt.Fprintf(out, "\n%s, average %d°C, rainy on %d of %d days\n", c.Category, c.AvgTemp, c.RainyDays, c.TotalDays)
	}
	return nil
}
