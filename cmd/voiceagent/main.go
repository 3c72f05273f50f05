package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"smartai-dashboard/internal/config"
	"smartai-dashboard/internal/voice"
)

var (
	configPath string
	flagValues config.AgentConfig
)

var rootCmd = &cobra.Command{
	Use:   "voiceagent",
	Short: "Wake-word voice agent for the SmartAI dashboard",
	Long: `Listens on the microphone for the wake word, recognizes one command,
sends it to the dashboard assistant and speaks the reply.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAgent(configPath)
		if err != nil {
			return err
		}
		applyFlags(cmd.Flags(), cfg)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return run(ctx, cfg)
	},
}

// applyFlags переопределяет конфигурацию только явно заданными флагами
func applyFlags(flags *pflag.FlagSet, cfg *config.AgentConfig) {
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "key":
			cfg.AccessKey = flagValues.AccessKey
		case "wake-word":
			cfg.WakeWord = flagValues.WakeWord
		case "assistant-url":
			cfg.AssistantURL = flagValues.AssistantURL
		case "device":
			cfg.AudioDevice = flagValues.AudioDevice
		case "stt-command":
			cfg.STTCommand = flagValues.STTCommand
		case "stt-language":
			cfg.STTLanguage = flagValues.STTLanguage
		case "tts-command":
			cfg.TTSCommand = flagValues.TTSCommand
		case "tts-rate":
			cfg.TTSRate = flagValues.TTSRate
		case "timeout":
			cfg.BackendTimeout = flagValues.BackendTimeout
		}
	})
}

func run(ctx context.Context, cfg *config.AgentConfig) error {
	console := voice.NewConsole(os.Stdout)

	detector, err := voice.NewPorcupine(cfg.AccessKey, cfg.WakeWord)
	if err != nil {
		return err
	}

	speaker, err := voice.NewSystemSpeaker(cfg.TTSCommand, cfg.TTSRate)
	if err != nil {
		teardown(detector, nil)
		return fmt.Errorf("text to speech: %w", err)
	}

	recognizer, err := voice.NewCommandRecognizer(cfg.STTCommand, cfg.STTLanguage)
	if err != nil {
		teardown(detector, speaker)
		return fmt.Errorf("speech recognition: %w", err)
	}

	mic, err := voice.OpenMicrophone(cfg.AudioDevice, detector.SampleRate(), detector.FrameLength())
	if err != nil {
		teardown(detector, speaker)
		return err
	}

	agent := voice.NewAgent(mic, detector, recognizer, speaker, voice.NewHTTPBackend(cfg.AssistantURL, cfg.BackendTimeout), console)
	defer func() {
		if err := agent.Close(); err != nil {
			log.Printf("Teardown error: %v", err)
		}
		console.Exit()
	}()

	console.Ready(cfg.WakeWord)
	return agent.Run(ctx)
}

// teardown освобождает уже созданные ресурсы, если запуск не удался
func teardown(detector voice.WakeWordDetector, speaker voice.Speaker) {
	if speaker != nil {
		if err := speaker.Close(); err != nil {
			log.Printf("Teardown error: close speaker: %v", err)
		}
	}
	if detector != nil {
		if err := detector.Delete(); err != nil {
			log.Printf("Teardown error: delete wake word detector: %v", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "YAML config file")
	rootCmd.Flags().StringVar(&flagValues.AccessKey, "key", "", "Picovoice access key (PORCUPINE_KEY)")
	rootCmd.Flags().StringVar(&flagValues.WakeWord, "wake-word", "computer", "built-in wake word")
	rootCmd.Flags().StringVar(&flagValues.AssistantURL, "assistant-url", "http://127.0.0.1:5000/assistant", "dashboard assistant endpoint")
	rootCmd.Flags().StringVar(&flagValues.AudioDevice, "device", "default", "ALSA capture device")
	rootCmd.Flags().StringVar(&flagValues.STTCommand, "stt-command", "", "speech recognizer command printing the transcript")
	rootCmd.Flags().StringVar(&flagValues.STTLanguage, "stt-language", "hi-IN", "speech recognition language")
	rootCmd.Flags().StringVar(&flagValues.TTSCommand, "tts-command", "espeak-ng", "text to speech binary")
	rootCmd.Flags().IntVar(&flagValues.TTSRate, "tts-rate", 175, "speech rate")
	rootCmd.Flags().DurationVar(&flagValues.BackendTimeout, "timeout", 20*time.Second, "assistant request timeout")
}
