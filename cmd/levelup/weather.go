// ABOUTME: CLI command for the weather mood.
// ABOUTME: Reads current conditions from Open-Meteo for the configured location.
package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/levelup/internal/weather"
	"github.com/spf13/cobra"
)

var (
	weatherLat   float64
	weatherLon   float64
	weatherWatch bool
)

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Show the current weather mood",
	Long: `Show current conditions and the mood they set.

Coordinates come from weather_lat and weather_lon in the config, or from
--lat and --lon. Use --watch to refresh every 10 minutes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("lat") || cmd.Flags().Changed("lon") {
			cfg.WeatherLat, cfg.WeatherLon = weatherLat, weatherLon
		}
		if !cfg.HasWeather() {
			return fmt.Errorf("no location: set weather_lat/weather_lon in the config or pass --lat/--lon")
		}

		client := weather.NewClient(cfg.WeatherLat, cfg.WeatherLon)
		if !weatherWatch {
			c, err := client.Current(cmd.Context())
			if err != nil {
				return err
			}
			printConditions(c)
			return nil
		}

		ctx, cancel := signalContext()
		defer cancel()
		client.Watch(ctx, weather.DefaultInterval, func(c *weather.Conditions, err error) {
			if err != nil {
				color.Yellow("⚠ %v", err)
				return
			}
			printConditions(c)
		})
		return nil
	},
}

func printConditions(c *weather.Conditions) {
	var mood string
	switch c.Mood {
	case weather.MoodSunny:
		mood = color.YellowString("sunny")
	case weather.MoodCloudy:
		mood = color.New(color.Faint).Sprint("cloudy")
	default:
		mood = color.BlueString("stormy")
	}
	fmt.Printf("%s %s  %.1f°C  wind %.0f km/h\n",
		color.New(color.Faint).Sprint(c.FetchedAt.Local().Format(time.Kitchen)),
		mood, c.Temperature, c.WindSpeed)
}

func init() {
	weatherCmd.Flags().Float64Var(&weatherLat, "lat", 0, "latitude")
	weatherCmd.Flags().Float64Var(&weatherLon, "lon", 0, "longitude")
	weatherCmd.Flags().BoolVarP(&weatherWatch, "watch", "w", false, "refresh until interrupted")
	rootCmd.AddCommand(weatherCmd)
}
