/*
Package operation runs a batch of fetches and reports one result per input.

	+-------------+
	|   Runner    |
	| (per item)  |
	+------+------+
	       |
	+------+------+      +-------------+
	|  provider   | ---> | destination |
	|  (Engine)   |      |  (Writer)   |
	+-------------+      +------+------+
	                            |
	                     +------+------+
	                     |  recorder   |
	                     | (manifest)  |
	                     +-------------+

🔄 Flow (each reference):
1. parse the reference into a remote.Request
2. retrieve the blob inside a private scratch directory
3. resolve, size-check and place the file under the output root
4. append a manifest entry when something was actually written
5. remove the scratch directory, whatever happened

⚡ Guarantees:
- a failing reference never stops the others
- results come back in input order, even with Jobs > 1
- only one goroutine appends to the manifest during a run
- simulate never touches the output tree or the manifest
- repo URLs and error text are redacted before they leave the package

🔍 Example:

	ctx = log.NewContext(ctx, console)
	runner, err := operation.NewRunner(ctx, operation.DefaultOptions())
	if err != nil {
		return err
	}
	report := runner.Run(ctx, entries)
	if report.Failed() {
		os.Exit(1)
	}
*/
package operation
