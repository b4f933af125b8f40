package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"vaani/internal/transcript"
)

// EnvWhisperPath overrides discovery of the whisper.cpp CLI binary.
const EnvWhisperPath = "VAANI_WHISPER_PATH"

var localBinaryCandidates = []string{"whisper-cli", "whisper-cpp"}

var ErrLocalEngineNotFound = errors.New("whisper-cli not found; install whisper.cpp or set " + EnvWhisperPath)

// LocalEngine shells out to a whisper.cpp binary and reads back its JSON
// sidecar output.
type LocalEngine struct {
	Executable string
	Logger     *zap.Logger
}

func NewLocalEngine(logger *zap.Logger) (*LocalEngine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if override := strings.TrimSpace(os.Getenv(EnvWhisperPath)); override != "" {
		if err := ensureExecutable(override); err != nil {
			return nil, fmt.Errorf("%s is not executable: %w", EnvWhisperPath, err)
		}
		return &LocalEngine{Executable: override, Logger: logger}, nil
	}

	for _, name := range localBinaryCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return &LocalEngine{Executable: path, Logger: logger}, nil
		}
	}

	return nil, ErrLocalEngineNotFound
}

func (e *LocalEngine) Name() string {
	return "local"
}

func (e *LocalEngine) Transcribe(ctx context.Context, req Request) (transcript.Result, error) {
	if strings.TrimSpace(req.AudioPath) == "" {
		return transcript.Result{}, errors.New("audio path is required")
	}
	if strings.TrimSpace(req.ModelPath) == "" {
		return transcript.Result{}, errors.New("model path is required")
	}
	if err := ensureExecutable(e.Executable); err != nil {
		return transcript.Result{}, fmt.Errorf("whisper engine missing or not executable: %w", err)
	}

	outBase := filepath.Join(os.TempDir(), fmt.Sprintf("vaani-%d", time.Now().UnixNano()))
	jsonOut := outBase + ".json"
	defer os.Remove(jsonOut)

	// whisper-cli defaults to -l en when the flag is absent, so "auto"
	// must be passed through explicitly to enable language detection.
	lang := strings.TrimSpace(req.Language)
	if lang == "" {
		lang = "auto"
	}

	args := []string{"-m", req.ModelPath, "-f", req.AudioPath, "-oj", "-of", outBase, "-l", lang}
	if prompt := strings.TrimSpace(req.InitialPrompt); prompt != "" {
		args = append(args, "--prompt", prompt)
	}

	cmd := exec.CommandContext(ctx, e.Executable, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	e.log().Debug("running whisper engine", zap.String("engine", e.Executable), zap.Strings("args", args))
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if isMissingSharedLibraryError(errText) {
			return transcript.Result{}, fmt.Errorf("whisper engine at %s is missing required shared libraries (%s); rebuild whisper.cpp with BUILD_SHARED_LIBS=OFF", e.Executable, errText)
		}
		if isIllegalInstructionError(errText) || isIllegalInstructionError(err.Error()) {
			return transcript.Result{}, fmt.Errorf("whisper engine crashed with an illegal CPU instruction; set %s to a whisper-cli binary built for your CPU", EnvWhisperPath)
		}
		if errText != "" {
			return transcript.Result{}, fmt.Errorf("whisper transcribe failed: %w (%s)", err, errText)
		}
		return transcript.Result{}, fmt.Errorf("whisper transcribe failed: %w", err)
	}

	payload, err := os.ReadFile(jsonOut)
	if err != nil {
		return transcript.Result{}, fmt.Errorf("read whisper json output: %w", err)
	}

	return parseWhisperCppJSON(payload)
}

func (e *LocalEngine) log() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// whisper.cpp -oj sidecar layout. Offsets are already milliseconds; the
// format carries no per-segment no-speech probability.
type whisperCppOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperCppJSON(payload []byte) (transcript.Result, error) {
	var out whisperCppOutput
	if err := json.Unmarshal(payload, &out); err != nil {
		return transcript.Result{}, fmt.Errorf("decode whisper json output: %w", err)
	}

	result := transcript.Result{
		Language: out.Result.Language,
		Segments: make([]transcript.Segment, 0, len(out.Transcription)),
	}
	for i, seg := range out.Transcription {
		result.Segments = append(result.Segments, transcript.Segment{
			Index:   i + 1,
			StartMs: seg.Offsets.From,
			EndMs:   seg.Offsets.To,
			Text:    strings.TrimSpace(seg.Text),
		})
	}

	return result, nil
}

func ensureExecutable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if info.Mode()&0o111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}

func isMissingSharedLibraryError(stderr string) bool {
	value := strings.ToLower(strings.TrimSpace(stderr))
	if value == "" {
		return false
	}

	patterns := []string{
		"error while loading shared libraries",
		"cannot open shared object file",
		"dyld: library not loaded",
		"image not found",
	}
	for _, pattern := range patterns {
		if strings.Contains(value, pattern) {
			return true
		}
	}
	return false
}

func isIllegalInstructionError(stderr string) bool {
	return strings.Contains(strings.ToLower(stderr), "illegal instruction")
}
