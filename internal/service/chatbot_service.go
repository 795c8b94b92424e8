package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pimacad/academico-api/internal/authz"
	"github.com/pimacad/academico-api/internal/models"
	appErrors "github.com/pimacad/academico-api/pkg/errors"
)

// Intent names recognised by the chatbot.
const (
	IntentSubstituteExam = "prova_substitutiva"
	IntentCardCopy       = "segunda_via_carteirinha"
	IntentWithdrawal     = "trancamento"
	IntentGradeReview    = "revisao_de_nota"
	IntentMyStatus       = "meu_status"
	IntentClassActivity  = "atividades_da_turma"
	IntentDeliveryPend   = "pendencias_de_entrega"
	IntentGradePend      = "pendencias_de_nota"
	IntentStudentStatus  = "status_do_aluno"
)

const chatbotFallback = "Desculpe, não entendi. Posso ajudar com prova substitutiva, " +
	"2ª via de carteirinha, trancamento, revisão de nota e consultas da secretaria."

type chatbotStudentService interface {
	Status(ctx context.Context, actor authz.Actor, ra string) (*models.StudentStatus, error)
}

type chatbotQuickQueries interface {
	ClassActivities(ctx context.Context, actor authz.Actor, classCode string) ([]models.Activity, error)
	DeliveryPendencies(ctx context.Context, actor authz.Actor, classCode string) ([]ActivityPendency, error)
	GradePendencies(ctx context.Context, actor authz.Actor, classCode string) ([]ActivityPendency, error)
}

type intentObserver interface {
	ObserveIntent(name string)
}

// ChatbotService resolves a message into an intent, executes it and
// always answers with text. Failures downstream become fixed user-facing
// messages; the chatbot never leaks error internals to the caller.
type ChatbotService struct {
	resolver  *IntentResolver
	students  chatbotStudentService
	queries   chatbotQuickQueries
	metrics   intentObserver
	validator *validator.Validate
	logger    *zap.Logger
}

// NewChatbotService constructs a ChatbotService with the default rules.
func NewChatbotService(students chatbotStudentService, queries chatbotQuickQueries, metrics intentObserver, validate *validator.Validate, logger *zap.Logger) *ChatbotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ChatbotService{
		resolver:  NewIntentResolver(DefaultIntentRules(), logger),
		students:  students,
		queries:   queries,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// DefaultIntentRules is the ordered chatbot rule set. Order matters:
// the first matching rule wins, so the more specific professor queries
// come before the generic secretary intents.
func DefaultIntentRules() []IntentRule {
	extractSingle := func(key string) func([]string) (map[string]string, bool) {
		return func(groups []string) (map[string]string, bool) {
			if len(groups) < 2 || strings.TrimSpace(groups[1]) == "" {
				return nil, false
			}
			return map[string]string{key: strings.ToUpper(strings.TrimSpace(groups[1]))}, true
		}
	}

	return []IntentRule{
		{
			Name:    IntentDeliveryPend,
			Pattern: regexp.MustCompile(`pend[eê]ncias? de entregas?(?: da turma)? (\S+)`),
			Roles:   []authz.Role{authz.RoleProfessor},
			Extract: extractSingle("turma"),
		},
		{
			Name:    IntentGradePend,
			Pattern: regexp.MustCompile(`pend[eê]ncias? de notas?(?: da turma)? (\S+)`),
			Roles:   []authz.Role{authz.RoleProfessor},
			Extract: extractSingle("turma"),
		},
		{
			Name:    IntentClassActivity,
			Pattern: regexp.MustCompile(`atividades(?: da turma)? (\S+)`),
			Roles:   []authz.Role{authz.RoleProfessor},
			Extract: extractSingle("turma"),
		},
		{
			Name:    IntentStudentStatus,
			Pattern: regexp.MustCompile(`status do aluno (\S+)`),
			Roles:   []authz.Role{authz.RoleProfessor},
			Extract: extractSingle("ra"),
		},
		{
			Name:    IntentMyStatus,
			Pattern: regexp.MustCompile(`meu status|minha situa[cç][aã]o|minhas notas|como estou`),
			Roles:   []authz.Role{authz.RoleStudent},
		},
		{
			Name:    IntentSubstituteExam,
			Pattern: regexp.MustCompile(`substitutiv`),
		},
		{
			Name:    IntentCardCopy,
			Pattern: regexp.MustCompile(`carteirinha|segunda via|2ª via|2a via`),
		},
		{
			Name:    IntentWithdrawal,
			Pattern: regexp.MustCompile(`trancament`),
		},
		{
			Name:    IntentGradeReview,
			Pattern: regexp.MustCompile(`revis[aã]o`),
		},
	}
}

// Ask answers one chatbot turn. The returned error is reserved for
// invalid payloads; everything downstream turns into reply text.
func (s *ChatbotService) Ask(ctx context.Context, session *models.Session, req models.AskRequest) (*models.AskResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chatbot payload")
	}

	match, err := s.resolver.Resolve(session.Role, req.Message)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoMatch) {
			return &models.AskResponse{Reply: chatbotFallback}, nil
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.ObserveIntent(match.Rule.Name)
	}

	reply := s.dispatch(ctx, session.Actor(), match)
	return &models.AskResponse{Reply: reply, Intent: match.Rule.Name}, nil
}

func (s *ChatbotService) dispatch(ctx context.Context, actor authz.Actor, match *IntentMatch) string {
	switch match.Rule.Name {
	case IntentSubstituteExam:
		return "A prova substitutiva deve ser solicitada pela secretaria em até 5 dias úteis " +
			"após a avaliação perdida, mediante justificativa documentada."
	case IntentCardCopy:
		return "A 2ª via da carteirinha é solicitada na secretaria com documento de identidade. " +
			"O prazo de emissão é de 7 dias úteis."
	case IntentWithdrawal:
		return "O trancamento de matrícula é feito presencialmente na secretaria acadêmica. " +
			"Procure o atendimento para verificar prazos e pendências financeiras."
	case IntentGradeReview:
		return "O pedido de revisão de nota deve ser protocolado na secretaria em até 3 dias úteis " +
			"após a divulgação do resultado, indicando a avaliação contestada."
	case IntentMyStatus:
		return s.replyMyStatus(ctx, actor)
	case IntentStudentStatus:
		return s.replyStudentStatus(ctx, actor, match.Args["ra"])
	case IntentClassActivity:
		return s.replyClassActivities(ctx, actor, match.Args["turma"])
	case IntentDeliveryPend:
		return s.replyPendencies(ctx, actor, match.Args["turma"], false)
	case IntentGradePend:
		return s.replyPendencies(ctx, actor, match.Args["turma"], true)
	default:
		return chatbotFallback
	}
}

func (s *ChatbotService) replyMyStatus(ctx context.Context, actor authz.Actor) string {
	status, err := s.students.Status(ctx, actor, "")
	if err != nil {
		return s.errorReply(err)
	}
	return formatStatus(status)
}

func (s *ChatbotService) replyStudentStatus(ctx context.Context, actor authz.Actor, ra string) string {
	status, err := s.students.Status(ctx, actor, ra)
	if err != nil {
		return s.errorReply(err)
	}
	return formatStatus(status)
}

func (s *ChatbotService) replyClassActivities(ctx context.Context, actor authz.Actor, classCode string) string {
	activities, err := s.queries.ClassActivities(ctx, actor, classCode)
	if err != nil {
		return s.errorReply(err)
	}
	if len(activities) == 0 {
		return fmt.Sprintf("A turma %s não tem atividades cadastradas.", classCode)
	}
	lines := make([]string, 0, len(activities)+1)
	lines = append(lines, fmt.Sprintf("Atividades da turma %s:", classCode))
	for _, a := range activities {
		lines = append(lines, fmt.Sprintf("- %s (entrega: %s)", a.Title, a.DueDate))
	}
	return strings.Join(lines, "\n")
}

func (s *ChatbotService) replyPendencies(ctx context.Context, actor authz.Actor, classCode string, grades bool) string {
	var (
		pendencies []ActivityPendency
		err        error
		label      string
	)
	if grades {
		pendencies, err = s.queries.GradePendencies(ctx, actor, classCode)
		label = "sem nota"
	} else {
		pendencies, err = s.queries.DeliveryPendencies(ctx, actor, classCode)
		label = "sem entrega"
	}
	if err != nil {
		return s.errorReply(err)
	}

	lines := []string{fmt.Sprintf("Pendências da turma %s:", classCode)}
	open := 0
	for _, p := range pendencies {
		if len(p.Students) == 0 {
			continue
		}
		open++
		lines = append(lines, fmt.Sprintf("- %s: %d aluno(s) %s (%s)",
			p.Title, len(p.Students), label, strings.Join(p.Students, ", ")))
	}
	if open == 0 {
		return fmt.Sprintf("A turma %s não tem pendências no momento.", classCode)
	}
	return strings.Join(lines, "\n")
}

// errorReply maps downstream failures to fixed messages. Denial and
// absence share one message so the chatbot cannot be used to probe for
// record existence.
func (s *ChatbotService) errorReply(err error) string {
	switch {
	case errors.Is(err, appErrors.ErrDenied), errors.Is(err, appErrors.ErrNotFound):
		return "Não encontrei esse registro."
	case errors.Is(err, appErrors.ErrForbidden):
		return "Você não tem permissão para essa consulta."
	default:
		s.logger.Error("chatbot dispatch failed", zap.Error(err))
		return "Não consegui concluir a consulta agora. Tente novamente em instantes."
	}
}

func formatStatus(status *models.StudentStatus) string {
	lines := []string{fmt.Sprintf("%s (RA %s), curso %s", status.Name, status.RA, status.Course)}
	if status.Class != nil {
		lines = append(lines, fmt.Sprintf("Turma: %s", *status.Class))
	}
	if status.Media != nil {
		lines = append(lines, fmt.Sprintf("NP1 %s | NP2 %s | PIM %s",
			formatGrade(status.NP1), formatGrade(status.NP2), formatGrade(status.PIM)))
		lines = append(lines, fmt.Sprintf("Média: %.2f (%s)", *status.Media, status.Situation))
	} else {
		lines = append(lines, fmt.Sprintf("Situação: %s", status.Situation))
	}
	return strings.Join(lines, "\n")
}

func formatGrade(g *float64) string {
	if g == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *g)
}
