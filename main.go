package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mudler/xlog"

	"github.com/sokoni-labs/sokoni/core/conversations"
	"github.com/sokoni-labs/sokoni/core/engine"
	"github.com/sokoni-labs/sokoni/core/prompt"
	"github.com/sokoni-labs/sokoni/core/sentiment"
	"github.com/sokoni-labs/sokoni/core/tools"
	"github.com/sokoni-labs/sokoni/core/types"
	"github.com/sokoni-labs/sokoni/followup"
	"github.com/sokoni-labs/sokoni/llm"
	"github.com/sokoni-labs/sokoni/llm/rag"
	"github.com/sokoni-labs/sokoni/pkg/config"
	"github.com/sokoni-labs/sokoni/store"
)

var agentID = os.Getenv("SOKONI_AGENT_ID")
var consolePhone = os.Getenv("SOKONI_CONSOLE_PHONE")

func init() {
	if consolePhone == "" {
		consolePhone = "+2250000000000"
	}
}

// main runs a console session for one agent: the full turn pipeline
// against the real store, with the followup sweeper running alongside.
// The messaging transport itself lives elsewhere.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		xlog.Error("Configuration error", "error", err)
		os.Exit(1)
	}
	if agentID == "" {
		xlog.Error("SOKONI_AGENT_ID not set")
		os.Exit(1)
	}

	ctx := context.Background()

	st, err := store.Open(cfg.DatabaseDSN)
	if err != nil {
		xlog.Error("Database error", "error", err)
		os.Exit(1)
	}

	client := llm.NewClient(cfg.LLMAPIKey, cfg.LLMAPIURL)

	synthesizer, err := prompt.NewSynthesizer()
	if err != nil {
		xlog.Error("Template error", "error", err)
		os.Exit(1)
	}

	agent, err := st.AgentByID(ctx, agentID)
	if err != nil {
		xlog.Error("Agent not found", "agent", agentID, "error", err)
		os.Exit(1)
	}
	if agent.Model == "" {
		agent.Model = cfg.Model
	}

	var retriever engine.Retriever
	if kb, err := rag.NewChromemDB("agent-"+agentID, client, cfg.EmbeddingsModel); err == nil {
		retriever = kb
	} else {
		xlog.Warn("Knowledge base unavailable, continuing without retrieval", "error", err)
	}

	eng := engine.New(
		engine.NewOrchestrator(client),
		synthesizer,
		tools.NewExecutor(st, tools.Config{
			PaymentBaseURL:     cfg.PaymentBaseURL,
			CurrencyLabel:      cfg.CurrencyLabel,
			DefaultCountryCode: cfg.DefaultCountryCode,
		}),
		sentiment.NewClassifier(client, cfg.SentimentModel, 0),
		retriever,
		st,
		cfg.CurrencyLabel,
	)

	sweeper := followup.New(st, st, followup.Config{
		PaymentBaseURL: cfg.PaymentBaseURL,
		CurrencyLabel:  cfg.CurrencyLabel,
		Schedule:       cfg.SweepSchedule,
	})
	if err := sweeper.Start(); err != nil {
		xlog.Error("Sweeper error", "error", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	tracker := conversations.NewConversationTracker[string](cfg.ConversationDuration)

	xlog.Info("Console session started", "agent", agent.Name, "model", agent.Model)
	fmt.Println("Type a message, Ctrl-D to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := handleLine(ctx, eng, st, tracker, *agent, text); err != nil {
			xlog.Error("Turn failed", "error", err)
		}
	}
}

func handleLine(ctx context.Context, eng *engine.Engine, st *store.Store, tracker *conversations.ConversationTracker[string], agent types.Agent, text string) error {
	conv, err := st.GetOrCreateConversation(ctx, agent.ID, consolePhone)
	if err != nil {
		return err
	}

	products, err := st.ProductsByAgent(ctx, agent.ID)
	if err != nil {
		return err
	}
	orders, err := st.RecentOrdersByCustomer(ctx, agent.ID, consolePhone, 3)
	if err != nil {
		return err
	}

	reply, err := eng.HandleTurn(ctx, engine.Turn{
		Agent:        agent,
		Conversation: *conv,
		Products:     products,
		History:      types.CustomerHistory{Orders: orders},
		Messages:     tracker.GetConversation(conv.ID),
		UserMessage:  text,
	})
	if err != nil {
		var gateErr *types.StateGateError
		if errors.As(err, &gateErr) {
			fmt.Printf("(conversation is %s; an operator has to act before the assistant answers)\n", gateErr.State)
			return nil
		}
		return err
	}

	tracker.AddMessage(conv.ID, llm.UserMessage(text))
	tracker.AddMessage(conv.ID, llm.AssistantMessage(reply.Text))
	if err := st.SaveMessage(ctx, conv.ID, "user", text); err != nil {
		xlog.Error("Failed to persist inbound message", "error", err)
	}
	if err := st.SaveMessage(ctx, conv.ID, "assistant", reply.Text); err != nil {
		xlog.Error("Failed to persist reply", "error", err)
	}

	fmt.Println(reply.Text)
	for _, img := range reply.Images {
		fmt.Printf("[image] %s (%s)\n", img.URL, img.Caption)
	}
	return nil
}
