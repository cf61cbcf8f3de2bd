package alerts

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/hibiken/asynq"
)

var (
	client *asynq.Client
	server *asynq.Server
)

// Init starts the Asynq server and initializes a shared client.
func Init() {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		host := os.Getenv("REDIS_HOST")
		if host == "" {
			host = "127.0.0.1"
		}
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		redisAddr = host + ":" + port
	}

	opts := asynq.RedisClientOpt{Addr: redisAddr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskRequestReceived, handleRequestReceived)
	mux.HandleFunc(TaskRequestAccepted, handleRequestAccepted)
	mux.HandleFunc(TaskHelpOpened, handleHelpOpened)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
			"alerts": 5,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			log.Printf("Asynq server stopped: %v", err)
		}
	}()

	log.Printf("Asynq initialized (addr=%s)", redisAddr)
}

// Close releases client and stops server.
func Close() {
	if client != nil {
		_ = client.Close()
	}
	if server != nil {
		server.Shutdown()
	}
}

// Handlers below parse payloads and hand off to the mailer.

func handleRequestReceived(_ context.Context, t *asynq.Task) error {
	var p RequestReceivedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] RequestReceived send failed: %v", err)
		return err
	}
	log.Printf("[notify] RequestReceived sent -> request=%s provider=%d", p.RequestID, p.ProviderID)
	return nil
}

func handleRequestAccepted(_ context.Context, t *asynq.Task) error {
	var p RequestAcceptedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] RequestAccepted send failed: %v", err)
		return err
	}
	log.Printf("[notify] RequestAccepted sent -> request=%s", p.RequestID)
	return nil
}

func handleHelpOpened(_ context.Context, t *asynq.Task) error {
	var p HelpOpenedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		log.Printf("[notify][ERROR] HelpOpened send failed: %v", err)
		return err
	}
	log.Printf("[notify] HelpOpened sent -> ticket=%s", p.TicketID)
	return nil
}
