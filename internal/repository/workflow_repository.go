package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/validation"

	"github.com/gosimple/slug"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var workflowFileExtensions = map[string]bool{
	".yaml": true,
	".yml":  true,
	".json": true,
}

// FileWorkflowRepository serves workflow definitions read from a directory of
// YAML or JSON files.
type FileWorkflowRepository struct {
	dir       string
	workflows map[string]domain.WorkflowDefinition
	mu        sync.RWMutex
}

func NewFileWorkflowRepository(dir string) *FileWorkflowRepository {
	return &FileWorkflowRepository{
		dir:       dir,
		workflows: map[string]domain.WorkflowDefinition{},
	}
}

// Reload replaces the loaded workflows with the current directory contents.
// A single invalid file fails the whole reload and keeps the previous set.
func (r *FileWorkflowRepository) Reload(ctx context.Context) error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("failed to read workflows directory %s: %w", r.dir, err)
	}

	workflows := make(map[string]domain.WorkflowDefinition, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !workflowFileExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		workflow, err := LoadWorkflowFile(filepath.Join(r.dir, entry.Name()))
		if err != nil {
			return err
		}

		if _, exists := workflows[workflow.ID]; exists {
			return fmt.Errorf("duplicate workflow id %s in %s", workflow.ID, entry.Name())
		}

		workflows[workflow.ID] = workflow
	}

	r.mu.Lock()
	r.workflows = workflows
	r.mu.Unlock()

	log.Info().Str("dir", r.dir).Int("workflows", len(workflows)).Msg("Loaded workflow definitions")

	return nil
}

func (r *FileWorkflowRepository) GetWorkflow(ctx context.Context, workflowID string) (domain.WorkflowDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflow, ok := r.workflows[workflowID]
	if !ok {
		return domain.WorkflowDefinition{}, fmt.Errorf("%w: %s", domain.ErrWorkflowNotFound, workflowID)
	}

	return workflow, nil
}

func (r *FileWorkflowRepository) ListWorkflows(ctx context.Context) ([]domain.WorkflowDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	workflows := make([]domain.WorkflowDefinition, 0, len(r.workflows))
	for _, workflow := range r.workflows {
		workflows = append(workflows, workflow)
	}

	sort.Slice(workflows, func(i, j int) bool { return workflows[i].ID < workflows[j].ID })

	return workflows, nil
}

// LoadWorkflowFile reads and validates one workflow definition. JSON files go
// through the YAML decoder as well.
func LoadWorkflowFile(path string) (domain.WorkflowDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.WorkflowDefinition{}, fmt.Errorf("failed to read workflow file: %w", err)
	}

	workflow, err := ParseWorkflow(raw)
	if err != nil {
		return domain.WorkflowDefinition{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if workflow.ID == "" {
		base := filepath.Base(path)
		workflow.ID = slug.Make(strings.TrimSuffix(base, filepath.Ext(base)))
	}

	return workflow, nil
}

func ParseWorkflow(raw []byte) (domain.WorkflowDefinition, error) {
	var document any
	if err := yaml.Unmarshal(raw, &document); err != nil {
		return domain.WorkflowDefinition{}, fmt.Errorf("%w: %v", validation.ErrInvalidWorkflow, err)
	}

	if err := validation.ValidateWorkflowDocument(document); err != nil {
		return domain.WorkflowDefinition{}, err
	}

	var workflow domain.WorkflowDefinition
	if err := yaml.Unmarshal(raw, &workflow); err != nil {
		return domain.WorkflowDefinition{}, fmt.Errorf("%w: %v", validation.ErrInvalidWorkflow, err)
	}

	if workflow.Status == "" {
		workflow.Status = domain.WorkflowStatusDraft
	}

	for i := range workflow.Edges {
		if workflow.Edges[i].ID == "" {
			workflow.Edges[i].ID = fmt.Sprintf("%s-%s", workflow.Edges[i].Source, workflow.Edges[i].Target)
		}
	}

	return workflow, nil
}
