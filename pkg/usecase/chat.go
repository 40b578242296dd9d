package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/healthbot/pkg/domain/interfaces"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
	"github.com/secmon-lab/healthbot/pkg/domain/types"
	"github.com/secmon-lab/healthbot/pkg/service/classifier"
	"github.com/secmon-lab/healthbot/pkg/utils/async"
	"github.com/secmon-lab/healthbot/pkg/utils/errutil"
	"github.com/secmon-lab/healthbot/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// RecentTurnLimit is how many previous turns are offered to reply generation
const RecentTurnLimit = 5

// ChatResult is the outcome of one patient message
type ChatResult struct {
	PatientTurn    *model.Turn           `json:"patient_turn"`
	BotTurn        *model.Turn           `json:"bot_turn"`
	Reply          string                `json:"reply"`
	Classification *classifier.Result    `json:"classification"`
	Request        *model.PatientRequest `json:"request,omitempty"`
}

type ChatUseCase struct {
	repo       interfaces.Repository
	classifier *classifier.Classifier
	reply      interfaces.ReplyGenerator
	graph      interfaces.KnowledgeGraph
	llmTimeout time.Duration
}

func NewChatUseCase(repo interfaces.Repository, c *classifier.Classifier, reply interfaces.ReplyGenerator, graph interfaces.KnowledgeGraph, llmTimeout time.Duration) *ChatUseCase {
	return &ChatUseCase{
		repo:       repo,
		classifier: c,
		reply:      reply,
		graph:      graph,
		llmTimeout: llmTimeout,
	}
}

// HandleMessage records a patient message, answers it and records any
// appointment or medication request it carries
func (uc *ChatUseCase) HandleMessage(ctx context.Context, patientID model.PatientID, message string) (*ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return nil, goerr.Wrap(ErrEmptyMessage, "cannot handle message", goerr.V(PatientIDKey, patientID))
	}

	patient, err := uc.repo.Patient().Get(ctx, patientID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, goerr.Wrap(ErrPatientNotFound, "cannot handle message", goerr.V(PatientIDKey, patientID))
		}
		return nil, goerr.Wrap(err, "failed to get patient", goerr.V(PatientIDKey, patientID))
	}

	if uc.graph != nil {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return uc.graph.SavePatient(ctx, patient)
		})
	}

	recent, err := uc.repo.Turn().Recent(ctx, patientID, RecentTurnLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get recent turns", goerr.V(PatientIDKey, patientID))
	}

	patientTurn, err := uc.repo.Turn().Append(ctx, patientID, types.SenderPatient, message)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save patient turn", goerr.V(PatientIDKey, patientID))
	}

	result := &ChatResult{PatientTurn: patientTurn}

	if !uc.classifier.Gate(message) {
		result.Reply = classifier.RefusalReply
		result.Classification = uc.classifier.Classify(ctx, classifier.Input{Message: message, Patient: patient})
	} else {
		uc.answer(ctx, patient, recent, message, result)
	}

	if !result.Classification.Entities.IsEmpty() && uc.graph != nil {
		if err := uc.graph.SaveEntities(ctx, patient.FullName(), result.Classification.Entities); err != nil {
			_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to save entities", goerr.V(PatientIDKey, patientID)),
				"knowledge graph update failed")
		}
	}

	if req := result.Classification.Request; req != nil {
		created, err := uc.repo.Request().Create(ctx, req)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to save patient request",
				goerr.V(PatientIDKey, patientID),
				goerr.V("kind", req.Kind))
		}
		result.Request = created
		logging.From(ctx).Info("patient request recorded",
			"patient_id", patientID,
			"kind", created.Kind,
			"request_id", created.ID)
	}

	botTurn, err := uc.repo.Turn().Append(ctx, patientID, types.SenderBot, result.Reply)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to save bot turn", goerr.V(PatientIDKey, patientID))
	}
	result.BotTurn = botTurn

	return result, nil
}

// answer runs reply generation and classification concurrently. Neither
// branch fails: collaborator errors are replaced by fixed texts.
func (uc *ChatUseCase) answer(ctx context.Context, patient *model.Patient, recent []*model.Turn, message string, result *ChatResult) {
	var eg errgroup.Group

	eg.Go(func() error {
		result.Reply = uc.generateReply(ctx, patient, recent, message)
		return nil
	})

	eg.Go(func() error {
		ctx, cancel := context.WithTimeout(ctx, uc.llmTimeout)
		defer cancel()

		result.Classification = uc.classifier.Classify(ctx, classifier.Input{
			Message:     message,
			Patient:     patient,
			RecentTurns: recent,
		})
		return nil
	})

	_ = eg.Wait()
}

func (uc *ChatUseCase) generateReply(ctx context.Context, patient *model.Patient, recent []*model.Turn, message string) string {
	logger := logging.From(ctx)

	if uc.reply == nil {
		logger.Warn("no reply generator configured")
		return ApologyReply
	}

	knowledge := model.NewKnowledge(patient.FullName())
	if uc.graph != nil {
		k, err := uc.graph.GetKnowledge(ctx, patient.FullName())
		if err != nil {
			logger.Warn("failed to load patient knowledge", "error", err, "patient_id", patient.ID)
		} else {
			knowledge = k
		}
	}

	history := slices.Clone(recent)
	slices.Reverse(history)

	ctx, cancel := context.WithTimeout(ctx, uc.llmTimeout)
	defer cancel()

	reply, err := uc.reply.Reply(ctx, &model.Conversation{
		Patient:   patient,
		Knowledge: knowledge,
		History:   history,
		Message:   classifier.Normalize(message),
	})
	if err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "reply generation failed", goerr.V(PatientIDKey, patient.ID)),
			"reply generation failed")
		return ApologyReply
	}

	if !uc.classifier.Lexicon().IsReplyAllowed(reply) {
		logger.Warn("generated reply contained disallowed content", "patient_id", patient.ID)
		return UnsafeReplyFallback
	}
	return reply
}
