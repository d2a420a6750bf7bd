// Package payment runs the payment challenge protocol: it issues payment
// requirements for an item and settles a purchase once an attestation passes
// every check.
package payment

import (
	"context"
	"errors"
	"math/big"
	"regexp"
	"sync"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/catalog"
	"github.com/cyphera/cyphera-agentpay/internal/chain"
	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/constraints"
	"github.com/cyphera/cyphera-agentpay/internal/ledger"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/cyphera/cyphera-agentpay/internal/mandate"
	"github.com/cyphera/cyphera-agentpay/internal/notify"
	"github.com/cyphera/cyphera-agentpay/internal/onchain"
	"github.com/cyphera/cyphera-agentpay/internal/payerrors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var transactionHashPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// notifyTimeout bounds post-commit notification.
const notifyTimeout = 5 * time.Second

// Ledger is the settlement ledger as used by the engine.
type Ledger interface {
	CheckNotDuplicate(ctx context.Context, settlementReference string) error
	Commit(ctx context.Context, record ledger.PurchaseRecord, debit *ledger.BudgetDebit) (*ledger.PurchaseRecord, error)
}

// PaymentVerifier confirms on-chain settlement.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string, expectedAmount *big.Int, expectedRecipient string, network string) (*onchain.PaymentProof, error)
}

// Config configures an Engine.
type Config struct {
	// PayeeAddress receives every payment.
	PayeeAddress string
	Networks     *chain.Registry
	// Now defaults to time.Now.
	Now func() time.Time
}

// Engine runs purchase attempts. It holds no per-attempt state and is safe for
// concurrent use. Engines must not be copied after first use.
type Engine struct {
	ledger    Ledger
	verifier  PaymentVerifier
	publisher notify.Publisher
	networks  *chain.Registry
	payee     string
	now       func() time.Time
	logger    *zap.Logger
	// notifying tracks post-commit publishes still running.
	notifying sync.WaitGroup
}

// NewEngine creates a new payment engine
func NewEngine(l Ledger, verifier PaymentVerifier, publisher notify.Publisher, cfg Config) *Engine {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = notify.Noop{}
	}
	return &Engine{
		ledger:    l,
		verifier:  verifier,
		publisher: publisher,
		networks:  cfg.Networks,
		payee:     cfg.PayeeAddress,
		now:       now,
		logger:    logger.Log,
	}
}

// Challenge describes how to pay for item: one option per supported network.
// Nothing is persisted.
func (e *Engine) Challenge(item catalog.Item) Challenge {
	networks := e.networks.List()
	accepted := make([]PaymentOption, 0, len(networks))
	for _, n := range networks {
		accepted = append(accepted, PaymentOption{
			Amount:      n.TokenUnitsForMinor(item.Price).String(),
			AmountCents: item.Price,
			Currency:    n.TokenSymbol,
			Network:     n.ID,
			Recipient:   e.payee,
			Asset:       n.TokenAddress,
		})
	}
	return Challenge{Accepted: accepted, Item: summarize(item)}
}

// attempt tracks the states one Process call passes through.
type attempt struct {
	trace []State
}

func (a *attempt) advance(s State) {
	a.trace = append(a.trace, s)
}

func (a *attempt) last() State {
	return a.trace[len(a.trace)-1]
}

// Process runs the verification pipeline for an attestation and records the
// purchase if every step passes. Steps run in a fixed order and the first failure
// ends the attempt: intent, constraints, duplicate check, on-chain verification,
// commit. Nothing is persisted unless the commit succeeds.
func (e *Engine) Process(ctx context.Context, item catalog.Item, att Attestation) (*Outcome, error) {
	now := e.now().UTC()
	a := &attempt{trace: []State{StateRequested}}

	network, err := e.checkEnvelope(att)
	if err != nil {
		return e.reject(a, item, att, err)
	}
	att.SettlementReference = ledger.CanonicalReference(att.SettlementReference)

	// Intent
	verified, err := mandate.Verify(att.Intent, att.IntentSignature, now)
	if err != nil {
		return e.reject(a, item, att, err)
	}
	if err := verified.Validate(); err != nil {
		return e.reject(a, item, att, err)
	}
	auth, err := ledger.AuthorizationFromMandate(*verified, now)
	if err != nil {
		return e.reject(a, item, att, payerrors.Wrap(payerrors.CodeMalformedAttestation, "mandate could not be serialized", err))
	}
	if att.AuthorizationID != "" {
		if id, _ := uuid.Parse(att.AuthorizationID); id != auth.ID {
			return e.reject(a, item, att, payerrors.Newf(payerrors.CodeAuthorizationMismatch,
				"authorization %s was not issued for this mandate", att.AuthorizationID))
		}
	}
	a.advance(StateIntentVerified)

	// Constraints
	if err := constraints.Validate(constraints.LimitsFromMandate(*verified), item.Purchase()); err != nil {
		return e.reject(a, item, att, err)
	}
	a.advance(StateConstraintsChecked)

	// Duplicate pre-check
	if err := e.ledger.CheckNotDuplicate(ctx, att.SettlementReference); err != nil {
		return e.reject(a, item, att, err)
	}
	a.advance(StateDuplicateChecked)

	// On-chain
	expected := network.TokenUnitsForMinor(item.Price)
	proof, err := e.verifier.Verify(ctx, att.SettlementReference, expected, e.payee, network.ID)
	if err != nil {
		return e.reject(a, item, att, err)
	}
	a.advance(StateOnchainVerified)

	// Commit
	record := ledger.PurchaseRecord{
		ID:                  uuid.New(),
		ItemID:              item.ID,
		SettlementReference: att.SettlementReference,
		PayerAddress:        proof.From,
		PayeeAddress:        proof.To,
		Amount:              proof.Amount,
		AmountCents:         item.Price,
		Network:             network.ID,
		BlockNumber:         proof.BlockNumber,
		PaymentProof:        *proof,
		MandateSnapshot:     *verified,
		ItemSnapshot:        item,
		CreatedAt:           now,
	}
	debit := &ledger.BudgetDebit{Authorization: auth, Amount: item.Price, At: now}

	committed, err := e.ledger.Commit(ctx, record, debit)
	if err != nil {
		return e.reject(a, item, att, err)
	}
	a.advance(StateRecorded)

	e.publish(ctx, *committed)

	return &Outcome{
		State:  StateRecorded,
		Trace:  a.trace,
		Record: committed,
		Confirmation: &Confirmation{
			SettlementReference: committed.SettlementReference,
			Status:              constants.SettlementStatusConfirmed,
			PurchaseID:          committed.ID.String(),
		},
		Item:        item,
		CompletedAt: now,
	}, nil
}

// checkEnvelope validates the attestation fields that are not part of the mandate.
func (e *Engine) checkEnvelope(att Attestation) (chain.Network, error) {
	if !transactionHashPattern.MatchString(att.SettlementReference) {
		return chain.Network{}, payerrors.Newf(payerrors.CodeMalformedAttestation,
			"settlementReference %q is not a transaction hash", att.SettlementReference)
	}
	network, ok := e.networks.Get(att.Network)
	if !ok {
		return chain.Network{}, payerrors.Newf(payerrors.CodeUnsupportedNetwork, "network %q is not supported", att.Network).
			WithDetail("network", att.Network)
	}
	if att.AuthorizationID != "" {
		if _, err := uuid.Parse(att.AuthorizationID); err != nil {
			return chain.Network{}, payerrors.Newf(payerrors.CodeMalformedAttestation,
				"authorizationId %q is not a valid id", att.AuthorizationID)
		}
	}
	return network, nil
}

func (e *Engine) reject(a *attempt, item catalog.Item, att Attestation, err error) (*Outcome, error) {
	var pe *payerrors.PaymentError
	if !errors.As(err, &pe) {
		e.logger.Error("Purchase attempt failed",
			zap.String("stage", string(a.last())),
			zap.String("item_id", item.ID),
			zap.String("settlement_reference", att.SettlementReference),
			zap.Error(err),
		)
		return &Outcome{State: StateRejected, Trace: append(a.trace, StateRejected), FailedAt: a.last(), Item: item}, err
	}

	e.logger.Warn("Purchase attempt rejected",
		zap.String("reason", string(pe.Code)),
		zap.String("stage", string(a.last())),
		zap.String("item_id", item.ID),
		zap.String("settlement_reference", att.SettlementReference),
		zap.String("detail", pe.Message),
	)
	return &Outcome{
		State:    StateRejected,
		Trace:    append(a.trace, StateRejected),
		FailedAt: a.last(),
		Err:      pe,
		Item:     item,
	}, pe
}

// publish announces a recorded purchase in the background, so a slow sink never
// delays the purchase response. Failures are logged and do not affect the outcome.
func (e *Engine) publish(ctx context.Context, record ledger.PurchaseRecord) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	event := notify.NewPurchaseEvent(record)

	e.notifying.Add(1)
	go func() {
		defer e.notifying.Done()
		defer cancel()
		if err := e.publisher.Publish(ctx, event); err != nil {
			e.logger.Error("Failed to publish purchase event",
				zap.String("purchase_id", record.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every background publish has finished.
func (e *Engine) Wait() {
	e.notifying.Wait()
}
