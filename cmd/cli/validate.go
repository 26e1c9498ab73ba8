package cli

import (
	"fmt"

	"github.com/agencyflow/agencyflow/internal/repository"
	"github.com/agencyflow/agencyflow/pkg/domain/executor"
	"github.com/spf13/cobra"
)

func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <workflow-file>",
		Short: "Check a workflow file without running it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, err := repository.LoadWorkflowFile(args[0])
			if err != nil {
				return err
			}

			graph, err := executor.BuildExecutionGraph(workflow.Nodes, workflow.Edges, executor.BuildGraphOptions{
				StrictEdges: workflow.Settings.StrictEdges,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Workflow %s is valid\n", workflow.ID)
			fmt.Fprintf(out, "   Status: %s\n", workflow.Status)
			fmt.Fprintf(out, "   Nodes: %d, start nodes: %v\n", graph.Size(), graph.StartNodeIDs)

			for _, edge := range graph.DroppedEdges {
				fmt.Fprintf(out, "   Warning: edge %s references an unknown node (%s -> %s)\n", edge.ID, edge.Source, edge.Target)
			}

			return nil
		},
	}

	return cmd
}
