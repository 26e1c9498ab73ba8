package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agencyflow/agencyflow/pkg/domain"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrInvalidRequest  = errors.New("invalid execution request")
	ErrInvalidWorkflow = errors.New("invalid workflow definition")
)

var (
	executionRequestSchema = jsonschema.MustCompileString("execution-request.json", executionRequestSchemaJSON)
	workflowSchema         = jsonschema.MustCompileString("workflow.json", workflowSchemaJSON)
)

// DecodeExecutionRequest shape-checks a raw JSON request body and decodes it.
// An empty body is a valid request with no trigger data.
func DecodeExecutionRequest(raw []byte) (domain.ExecutionRequest, error) {
	var request domain.ExecutionRequest

	if len(bytes.TrimSpace(raw)) == 0 {
		return request, nil
	}

	if err := validateJSON(executionRequestSchema, raw); err != nil {
		return request, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	if err := json.Unmarshal(raw, &request); err != nil {
		return request, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	return request, nil
}

// ValidateWorkflowDocument checks a decoded workflow document, for example
// one read from YAML, against the workflow schema.
func ValidateWorkflowDocument(document any) error {
	raw, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWorkflow, err)
	}

	if err := validateJSON(workflowSchema, raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidWorkflow, err)
	}

	return nil
}

func DecodeWorkflow(raw []byte) (domain.WorkflowDefinition, error) {
	var workflow domain.WorkflowDefinition

	if err := validateJSON(workflowSchema, raw); err != nil {
		return workflow, fmt.Errorf("%w: %v", ErrInvalidWorkflow, err)
	}

	if err := json.Unmarshal(raw, &workflow); err != nil {
		return workflow, fmt.Errorf("%w: %v", ErrInvalidWorkflow, err)
	}

	return workflow, nil
}

func validateJSON(schema *jsonschema.Schema, raw []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var document any
	if err := decoder.Decode(&document); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}

	return schema.Validate(document)
}
