package handler

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// toDecimal converts a request string to a decimal, treating empty as zero
func toDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

// parseUUIDParam parses a UUID path parameter
func parseUUIDParam(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

// parseSequenceParam parses a positive integer path parameter
func parseSequenceParam(s string) (int, error) {
	return strconv.Atoi(s)
}
