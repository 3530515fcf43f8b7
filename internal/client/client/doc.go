// Package client contains the CLI's transport to the account server.
//
// # Overview
//
// The package provides:
//  1. The API contract (see the Client interface): register, login, logout,
//     refresh, profile reads and updates, channel and watch-history lookups.
//  2. A concrete HTTP implementation (see HTTPClient) that keeps the token
//     pair in memory, sends the access token as a Bearer header, and on a
//     token_expired reply refreshes once and retries the request.
//  3. A gRPC health probe (see HealthClient) used to show online status.
//
// # Error Handling
//
// Non-2xx replies become *ResponseError. Any 401 matches ErrUnauthorized
// with errors.Is; transport failures match ErrUnavailable.
//
// An HTTPClient is safe for concurrent use.
package client
