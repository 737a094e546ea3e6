// Package files stages the output files of a comparison run.
//
// Every report destination is first written to a temporary file in the same
// directory. Commit renames the staged files onto their destinations once the
// last output has been produced; Discard removes them when a later output
// fails, so a failed run leaves no new report behind.
//
// Example usage:
//
//	manager := files.NewManager(logger)
//	defer manager.Discard()
//
//	f, err := manager.Create("out/extra_instruments.txt")
//	if err != nil {
//	    return err
//	}
//	// write and close f
//
//	return manager.Commit()
package files
