package glue

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/paretoq/internal/agent"
	"github.com/danielpatrickdp/paretoq/internal/driver"
	"github.com/danielpatrickdp/paretoq/internal/taskspec"
	"github.com/danielpatrickdp/paretoq/internal/vector"
)

// Server exposes a driver.Agent over gRPC. Calls are serialised: the
// lifecycle is strictly sequential even when the transport is not.
type Server struct {
	mu    sync.Mutex
	agent driver.Agent
	log   *slog.Logger
}

// NewServer wraps a. A nil logger falls back to slog.Default().
func NewServer(a driver.Agent, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{agent: a, log: log}
}

// #region Init
func (s *Server) Init(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ack, err := s.agent.Init(stringOf(in, fieldTaskSpec))
	if err != nil {
		return nil, s.toStatus(MethodInit, err)
	}
	return payload(map[string]*structpb.Value{fieldAck: structpb.NewStringValue(ack)}), nil
}

// #endregion Init

// #region Start
func (s *Server) Start(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.agent.Start(floatsOf(in, fieldObservation))
	if err != nil {
		return nil, s.toStatus(MethodStart, err)
	}
	return payload(map[string]*structpb.Value{fieldAction: structpb.NewNumberValue(float64(a))}), nil
}

// #endregion Start

// #region Step
func (s *Server) Step(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.agent.Step(floatsOf(in, fieldReward), floatsOf(in, fieldObservation))
	if err != nil {
		return nil, s.toStatus(MethodStep, err)
	}
	return payload(map[string]*structpb.Value{fieldAction: structpb.NewNumberValue(float64(a))}), nil
}

// #endregion Step

// #region End
func (s *Server) End(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.agent.End(floatsOf(in, fieldReward)); err != nil {
		return nil, s.toStatus(MethodEnd, err)
	}
	return payload(nil), nil
}

// #endregion End

// #region Cleanup
func (s *Server) Cleanup(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.agent.Cleanup(); err != nil {
		return nil, s.toStatus(MethodCleanup, err)
	}
	return payload(nil), nil
}

// #endregion Cleanup

// #region Message
func (s *Server) Message(_ context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply, err := s.agent.Message(stringOf(in, fieldMessage))
	if err != nil {
		return nil, s.toStatus(MethodMessage, err)
	}
	return payload(map[string]*structpb.Value{fieldResponse: structpb.NewStringValue(reply)}), nil
}

// #endregion Message

func (s *Server) toStatus(method string, err error) error {
	code := codes.Internal
	switch {
	case errors.Is(err, agent.ErrLifecycle):
		code = codes.FailedPrecondition
	case errors.Is(err, taskspec.ErrFormat), errors.Is(err, vector.ErrDimensionMismatch):
		code = codes.InvalidArgument
	}
	s.log.Warn("glue call failed", "method", method, "code", code.String(), "error", err)
	return status.Error(code, err.Error())
}
