// Package claimkit provides an insurance claim workflow engine.
//
// A claim moves through a fixed review pipeline and may be routed through a
// fraud investigation that is inserted at runtime. The engine is split into
// pluggable service layers:
//
//   - machine      – state machine with runtime state insertion
//   - orchestrator – concurrent fraud agent fan-out and decision policy
//   - monitor      – state-entry hooks that drive orchestration
//   - review       – optional human-in-the-loop override
//
// Claimkit is designed to be embedded in host applications. End-users
// typically interact with the engine via the high-level Service façade
// exposed by the root package:
//
//	srv, _ := claimkit.New()
//	rt := srv.Runtime()
//	claim, _ := rt.Create(ctx, &claimkit.CreateRequest{
//		ClaimantName: "Ada Doyle",
//		Amount:       12500,
//		Description:  "rear-end collision",
//	})
//	claim, _ = rt.Transition(ctx, claim.ID, model.StateUnderReview)
//
// For more details see the README and individual sub-packages.
package claimkit
