// Package weather holds provider-agnostic helpers around domain.WeatherFetcher:
// a token-bucket rate limiter and a guard that discards superseded responses.
package weather
