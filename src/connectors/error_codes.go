package connectors

import "fmt"

// BingXErrorCodes maps BingX swap API error codes to short descriptions.
var BingXErrorCodes = map[int64]string{
	80001:  "REQUEST_FAILED",            // Generic request failure
	80012:  "SERVICE_UNAVAILABLE",       // Service unavailable
	80014:  "INVALID_PARAMETER",         // Invalid or missing parameter
	80016:  "ORDER_NOT_EXIST",           // Order does not exist
	80017:  "POSITION_NOT_EXIST",        // Position does not exist
	100001: "SIGNATURE_VERIFICATION",    // Signature verification failed
	100400: "INVALID_ARGUMENT",          // Invalid argument
	100413: "INCORRECT_API_KEY",         // Incorrect or revoked API key
	100421: "TIMESTAMP_OUT_OF_WINDOW",   // Timestamp outside recvWindow
	100440: "PRICE_DEVIATION",           // Order price deviates from market
	100500: "INTERNAL_ERROR",            // Exchange internal error
	101204: "INSUFFICIENT_MARGIN",       // Not enough margin for the order
	101400: "ORDER_REJECTED",            // Order rejected by risk checks
	101414: "MAX_LEVERAGE_EXCEEDED",     // Leverage above symbol maximum
	101415: "SYMBOL_SUSPENDED",          // Trading suspended for the symbol
	101460: "ORDER_PRICE_OUT_OF_RANGE",  // Price outside liquidation bounds
	109201: "DUPLICATE_CLIENT_ORDER_ID", // Duplicate client order ID
}

// DescribeErrorCode renders a BingX error code with its short name when
// the code is known.
func DescribeErrorCode(code int64) string {
	if name, ok := BingXErrorCodes[code]; ok {
		return fmt.Sprintf("%d (%s)", code, name)
	}
	return fmt.Sprintf("%d", code)
}
