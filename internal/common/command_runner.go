package common

import (
	"context"
	"fmt"

	"rolefit/internal/docreader"
	"rolefit/internal/errors"
)

// CreateInputFunc builds the operation input from the document text.
type CreateInputFunc[Input any] func(text string) (Input, error)

// LogDetailsFunc defines how to log the start of an operation.
type LogDetailsFunc[Input any] func(input Input, cfg CommandConfig)

// OperationFunc is the work a file-based command performs.
type OperationFunc[Input, Output any] func(context.Context, Input) (Output, error)

// RunFileCommand reads path, runs operation on it and writes the formatted
// result.
func RunFileCommand[Input, Output any](
	ctx context.Context,
	logger *errors.Logger,
	reader *docreader.Reader,
	out *OutputHandler,
	cmdConfig CommandConfig,
	path string,
	createInput CreateInputFunc[Input],
	operation OperationFunc[Input, Output],
	logDetails LogDetailsFunc[Input],
) error {
	text, err := reader.Read(path)
	if err != nil {
		return err
	}

	input, err := createInput(text)
	if err != nil {
		return fmt.Errorf("failed to create input from file contents: %w", err)
	}

	if logDetails != nil {
		logDetails(input, cmdConfig)
	}

	result, err := operation(ctx, input)
	if err != nil {
		return err
	}

	if logger != nil {
		logger.Debug("Operation completed", "file", path, "format", cmdConfig.OutputFormat)
	}
	return out.HandleOutput(result, cmdConfig)
}
