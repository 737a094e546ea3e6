// Package operations runs the instrument comparison as a fixed sequence of
// steps sharing one OperationState.
//
// The steps are, in order:
//
//	load_csv   read the instrument codes from the CSV export
//	load_json  read the JSON instrument cache
//	filter     keep live entries of the accepted product classes
//	diff       subtract the CSV codes from the normalized ids
//	report     print the summary and write the report files
//
// A Runner executes them one after another. The first failing step aborts the
// run and the later steps are marked skipped. The context is checked between
// steps, so an interrupt stops the run at the next step boundary.
//
// Example usage:
//
//	state, err := operations.Compare(ctx, runID, cfg, os.Stdout, logger)
//	if err != nil {
//		return err
//	}
//	fmt.Println(state.Result.Surplus.Len())
package operations
