package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPortfolioNotFound indicates that a portfolio with the given ID does not exist.
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrHoldingNotFound indicates that a holding with the given ID does not exist
	// in the requested portfolio.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrPriceNotFound indicates that no cached price exists for a symbol.
	ErrPriceNotFound = errors.New("price not found")

	// ErrSymbolNotFound indicates that a symbol lookup returned no results
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Price resolution errors are recorded per symbol and never abort a batch.
var (
	// ErrNoProviders indicates that no provider is configured for the instrument's category.
	ErrNoProviders = errors.New("no price providers for category")

	// ErrAllProvidersFailed indicates every provider in the chain failed and no
	// cached price was available to fall back on.
	ErrAllProvidersFailed = errors.New("all price providers failed")

	// ErrInvalidPrice indicates a provider answered with a zero, negative or non-finite price.
	ErrInvalidPrice = errors.New("provider returned an invalid price")

	// ErrProviderNotConfigured indicates a provider is missing its API key.
	ErrProviderNotConfigured = errors.New("provider not configured")
)

// Currency errors.
var (
	// ErrRateNotFound indicates that an exchange rate for one side of a
	// conversion is unknown. Conversions never fall back to a rate of 1.
	ErrRateNotFound = errors.New("exchange rate not found")

	// ErrUnknownCurrency indicates a currency code is not a valid ISO 4217 code.
	ErrUnknownCurrency = errors.New("unknown currency")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInvalidCategory indicates that a holding category is not one of the known categories.
	ErrInvalidCategory = errors.New("invalid category")

	// Validation errors for required fields
	ErrInvalidSymbol = errors.New("symbol is required")
	ErrInvalidDate   = errors.New("date parameter is required")
)

// Operation failure errors represent system-level failures when retrieving or processing data.
var (
	ErrFailedToRetrievePortfolios = errors.New("failed to retrieve portfolios")
	ErrFailedToRetrieveHoldings   = errors.New("failed to retrieve holdings")
	ErrFailedToValuate            = errors.New("failed to valuate portfolio")
	ErrFailedToRetrieveSnapshots  = errors.New("failed to retrieve snapshots")
	ErrFailedToRetrieveBenchmarks = errors.New("failed to retrieve benchmark prices")
	ErrFailedToRetrieveRates      = errors.New("failed to retrieve exchange rates")
	ErrFailedToGetVersionInfo     = errors.New("failed to get version information")
)
