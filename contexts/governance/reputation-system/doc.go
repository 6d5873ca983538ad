// Package reputationsystem implements the permissioned reputation ledger
// inside the governance context.
//
// The module owns poll request lifecycle, poll activation, the per-poll vote
// ledger, the two-tier (pending/confirmed) reputation store with mirrored
// project/global scopes, batch promotion, and the root-restricted admin
// override with its audit trail. Voting rights are rationed by an external
// vote authorization ledger consulted through a fail-closed gateway; the
// module never re-implements voter eligibility itself. Business rules live in
// application/domain layers and infrastructure stays behind ports and
// adapters.
package reputationsystem
