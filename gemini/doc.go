// Package gemini provides a typed client for the Google Generative
// Language REST API.
//
// The package covers the model catalogue (list and get), text
// generation and token counting, with every response and error decoded
// into plain Go types. No state is shared with the server beyond the
// individual HTTP exchanges.
//
// # Client and Calls
//
// The entry point is [Client], built with [New] and released with
// [Client.Close]:
//
//	client, err := gemini.New(os.Getenv("GEMINI_API_KEY"))
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Operations are asynchronous. Each returns a [Call] immediately while
// the request executes on a bounded dispatch pool, so independent
// requests overlap without extra goroutines on the caller's side:
//
//	models := client.ListModels(ctx)
//	count := client.CountTokens(ctx, gemini.DefaultModel, "hello there")
//
//	list, err := models.Wait(ctx)
//	n, err := count.Wait(ctx)
//
// [Call.Done] exposes the completion as a channel for use in select
// statements. A Call completes exactly once; Wait may be called any
// number of times from any goroutine.
//
// # Errors
//
// Every failure is one of three variants, matched structurally with
// [errors.As] or by class with [errors.Is]:
//
//   - [HTTPError], errors.Is(err, [ErrHTTPStatus]): the server replied
//     with a non-2xx status. Carries the status code and the message
//     mined from the API error envelope.
//   - [DecodeError], errors.Is(err, [ErrDecode]): a success response
//     whose body did not decode into the expected type.
//   - [UnexpectedError], errors.Is(err, [ErrUnexpected]): transport
//     failures, timeouts, construction faults, use after Close.
//
// # Secret handling
//
// The API key is wrapped in [Secret] at construction. It reaches the
// wire only as the key query parameter, and the client's log output is
// scrubbed so neither the parameter nor the literal key value appears
// in diagnostics.
package gemini
