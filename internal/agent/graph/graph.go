package graph

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/embedding"
	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	"github.com/landover-agents/server/internal/agent/analyze"
	"github.com/landover-agents/server/internal/agent/composer"
	"github.com/landover-agents/server/internal/agent/dispatch"
	"github.com/landover-agents/server/internal/agent/fallback"
	"github.com/landover-agents/server/internal/agent/graph/nodes"
	"github.com/landover-agents/server/internal/agent/graph/observers"
	"github.com/landover-agents/server/internal/agent/model"
	"github.com/landover-agents/server/internal/agent/resolve"
	"github.com/landover-agents/server/internal/agent/retrieve"
	logx "github.com/landover-agents/server/pkg/logger"
)

// Runner is a thin wrapper to execute the compiled graph with the public QueryInput.
type Runner interface {
	Ask(ctx context.Context, in model.QueryInput) (*model.ResultEnvelope, error)
}

// Config holds everything needed to compose the full answer graph end-to-end.
// ResolverModel, ComposerModel, Embedder, and Cache are all optional; the
// pipeline degrades to its deterministic paths without them.
type Config struct {
	ResolverModel     einomodel.BaseChatModel
	ComposerModel     einomodel.BaseChatModel
	ResolverModelName string
	ComposerModelName string
	Embedder          embedding.Embedder

	Aggregates model.AggregateStore
	Facts      model.FactStore
	Excerpts   model.ExcerptStore
	Cache      model.AnswerCache

	Pipeline model.PipelineConfig
}

// GraphConfig holds the constructed pipeline stages the graph wires together.
type GraphConfig struct {
	Resolver   *resolve.Resolver
	Dispatcher *dispatch.Dispatcher
	Chain      *fallback.Chain
}

// GraphBuilder handles the construction of the answer graph
type GraphBuilder struct {
	config *GraphConfig
	graph  *compose.Graph[model.QueryInput, *model.ResultEnvelope]
}

type graphRunner struct {
	runnable compose.Runnable[model.QueryInput, *model.ResultEnvelope]
	cache    model.AnswerCache
}

func (r *graphRunner) Ask(ctx context.Context, in model.QueryInput) (*model.ResultEnvelope, error) {
	if r.cache != nil {
		if env, hit, err := r.cache.Get(ctx, in.Question); err != nil {
			logx.Warn().Err(err).Msg("answer cache read failed")
		} else if hit {
			logx.Debug().Msg("answer served from cache")
			return env, nil
		}
	}

	out, err := r.runnable.Invoke(ctx, in, compose.WithCallbacks(observers.NewAllCallbacks()))
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("graph returned nil envelope")
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, in.Question, out); err != nil {
			logx.Warn().Err(err).Msg("answer cache write failed")
		}
	}
	return out, nil
}

// BuildAnswerGraph composes the pipeline stages, builds the graph, and returns a Runner.
func BuildAnswerGraph(ctx context.Context, cfg Config) (Runner, error) {
	if cfg.Aggregates == nil || cfg.Facts == nil || cfg.Excerpts == nil {
		return nil, fmt.Errorf("budget stores are not properly initialized")
	}

	analyzer := analyze.New(cfg.Aggregates, cfg.Facts)
	retriever := retrieve.New(cfg.Embedder, cfg.Excerpts, cfg.Pipeline.RetrievalK)
	comp := composer.New(cfg.ComposerModel, cfg.ComposerModelName)

	runnable, err := BuildGraph(ctx, &GraphConfig{
		Resolver:   resolve.New(cfg.ResolverModel, cfg.ResolverModelName),
		Dispatcher: dispatch.New(cfg.Aggregates),
		Chain:      fallback.New(analyzer, retriever, comp),
	})
	if err != nil {
		return nil, err
	}

	logx.Debug().Msg("Answer graph built successfully")
	return &graphRunner{runnable: runnable, cache: cfg.Cache}, nil
}

// BuildGraph constructs and returns the compiled answer graph
func BuildGraph(ctx context.Context, config *GraphConfig) (compose.Runnable[model.QueryInput, *model.ResultEnvelope], error) {
	if config == nil {
		return nil, fmt.Errorf("graph config is nil")
	}
	if config.Resolver == nil || config.Dispatcher == nil || config.Chain == nil {
		return nil, fmt.Errorf("pipeline stages are not properly initialized")
	}

	builder := &GraphBuilder{
		config: config,
		graph: compose.NewGraph[model.QueryInput, *model.ResultEnvelope](
			compose.WithGenLocalState(func(ctx context.Context) *model.AppState {
				return &model.AppState{}
			}),
		),
	}

	builder.addNodes()
	builder.addEdges()

	if err := builder.addBranches(); err != nil {
		return nil, err
	}

	return builder.compile(ctx)
}

// addNodes adds all processing nodes to the graph
func (b *GraphBuilder) addNodes() {
	b.graph.AddLambdaNode(nodes.NodeIntentResolver,
		nodes.NewIntentResolverNode(b.config.Resolver),
		compose.WithStatePreHandler(nodes.NewIntentResolverPreHandler()),
		compose.WithStatePostHandler(nodes.NewIntentResolverPostHandler()),
	)

	b.graph.AddLambdaNode(nodes.NodeDispatcher,
		nodes.NewDispatcherNode(b.config.Dispatcher),
	)

	b.graph.AddLambdaNode(nodes.NodeFallbackChain,
		nodes.NewFallbackChainNode(b.config.Chain),
	)
}

// addEdges creates the main flow connections between nodes
func (b *GraphBuilder) addEdges() {
	edges := [][2]string{
		{compose.START, nodes.NodeIntentResolver},
		{nodes.NodeIntentResolver, nodes.NodeDispatcher},
		{nodes.NodeFallbackChain, compose.END},
	}

	for _, edge := range edges {
		b.graph.AddEdge(edge[0], edge[1])
	}
}

// addBranches creates conditional routing branches
func (b *GraphBuilder) addBranches() error {
	answeredBranch := compose.NewGraphBranch(
		nodes.NewAnsweredCondition(),
		map[string]bool{
			nodes.NodeFallbackChain: true,
			compose.END:             true,
		},
	)
	if err := b.graph.AddBranch(nodes.NodeDispatcher, answeredBranch); err != nil {
		logx.Error().Err(err).Msg("Error adding answered branch")
		return fmt.Errorf("error adding answered branch: %w", err)
	}

	return nil
}

// compile finalizes and compiles the graph
func (b *GraphBuilder) compile(ctx context.Context) (compose.Runnable[model.QueryInput, *model.ResultEnvelope], error) {
	// The pipeline is a short straight line with one branch.
	runnable, err := b.graph.Compile(ctx, compose.WithMaxRunSteps(10))
	if err != nil {
		logx.Error().Err(err).Msg("Error compiling graph")
		return nil, fmt.Errorf("error compiling graph: %w", err)
	}

	logx.Debug().Msg("Graph compiled successfully")
	return runnable, nil
}
