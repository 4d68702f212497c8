// Package conduit provides an embeddable integration bus: a message router,
// a workflow engine, a resilient service invoker and a response projector
// behind one facade.
//
// Inbound messages are matched against routing rules, transformed and fanned
// out to destination queues. Workflows defined declaratively in YAML walk
// typed steps (service calls, conditions, parallel fan-outs, delays and
// declarative transforms) with per-step checkpointing, retries and
// cancellation. Service calls resolve their target through a service
// directory, retry with exponential backoff on transient failures and trim
// responses through field projections validated against the target's
// declared contract.
//
// End-users typically interact with the engine via the high-level Service
// facade exposed by the root package:
//
//	srv := conduit.New()
//	rt := srv.Runtime()
//	rt.Start(ctx)
//	wf, _ := rt.CreateWorkflow(ctx, definitionYAML)
//	exec, _ := rt.Execute(ctx, wf.ID)
//	exec, _ = rt.WaitForExecution(ctx, exec.ID, time.Minute)
//
// For more details see the README and individual sub-packages.
package conduit
