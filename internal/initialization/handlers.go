package initialization

import (
	"github.com/agencyflow/agencyflow/pkg/domain"
	"github.com/agencyflow/agencyflow/pkg/integrations/action"
	"github.com/agencyflow/agencyflow/pkg/integrations/ai"
	"github.com/agencyflow/agencyflow/pkg/integrations/condition"
	"github.com/agencyflow/agencyflow/pkg/integrations/database"
	"github.com/agencyflow/agencyflow/pkg/integrations/delay"
	"github.com/agencyflow/agencyflow/pkg/integrations/email"
	"github.com/agencyflow/agencyflow/pkg/integrations/filter"
	httphandler "github.com/agencyflow/agencyflow/pkg/integrations/http"
	"github.com/agencyflow/agencyflow/pkg/integrations/integration"
	"github.com/agencyflow/agencyflow/pkg/integrations/loop"
	"github.com/agencyflow/agencyflow/pkg/integrations/notification"
	"github.com/agencyflow/agencyflow/pkg/integrations/parallel"
	"github.com/agencyflow/agencyflow/pkg/integrations/transform"
	"github.com/agencyflow/agencyflow/pkg/integrations/trigger"
	"github.com/agencyflow/agencyflow/pkg/integrations/webhook"
)

type handlerRegisterParams struct {
	NodeType   domain.NodeType
	NewHandler func(deps domain.HandlerDeps) domain.NodeHandler
}

var handlerRegisterParamsList = []handlerRegisterParams{
	{NodeType: domain.NodeTypeTrigger, NewHandler: trigger.NewTriggerHandler},
	{NodeType: domain.NodeTypeAction, NewHandler: action.NewActionHandler},
	{NodeType: domain.NodeTypeCondition, NewHandler: condition.NewConditionHandler},
	{NodeType: domain.NodeTypeDelay, NewHandler: delay.NewDelayHandler},
	{NodeType: domain.NodeTypeNotification, NewHandler: notification.NewNotificationHandler},
	{NodeType: domain.NodeTypeEmail, NewHandler: email.NewEmailHandler},
	{NodeType: domain.NodeTypeAPI, NewHandler: httphandler.NewHTTPHandler},
	{NodeType: domain.NodeTypeHTTP, NewHandler: httphandler.NewHTTPHandler},
	{NodeType: domain.NodeTypeDatabase, NewHandler: database.NewDatabaseHandler},
	{NodeType: domain.NodeTypeWebhook, NewHandler: webhook.NewWebhookHandler},
	{NodeType: domain.NodeTypeTransform, NewHandler: transform.NewTransformHandler},
	{NodeType: domain.NodeTypeFilter, NewHandler: filter.NewFilterHandler},
	{NodeType: domain.NodeTypeLoop, NewHandler: loop.NewLoopHandler},
	{NodeType: domain.NodeTypeParallel, NewHandler: parallel.NewParallelHandler},
	{NodeType: domain.NodeTypeAI, NewHandler: ai.NewAIHandler},
	{NodeType: domain.NodeTypeIntegration, NewHandler: integration.NewIntegrationHandler},
}

// RegisterHandlers registers one handler per supported node type.
func RegisterHandlers(registry domain.HandlerRegistry, deps domain.HandlerDeps) {
	for _, params := range handlerRegisterParamsList {
		registry.Register(params.NodeType, params.NewHandler(deps))
	}
}
