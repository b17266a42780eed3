package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// ExtractAudio pulls the audio track out of a video as 16kHz mono WAV, the
// input format whisper models expect. The caller removes the returned temp
// file.
func ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	tmpFile, err := os.CreateTemp("", "transcribe-audio-*.wav")
	if err != nil {
		return "", err
	}
	tmpFile.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		tmpFile.Name(),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("ffmpeg audio extract: %s: %w", string(output), err)
	}

	return tmpFile.Name(), nil
}

// ExtractAudioFLAC encodes the audio track as 16kHz mono FLAC, which keeps
// upload sizes down for hosted transcription APIs without lossy artifacts.
func ExtractAudioFLAC(ctx context.Context, videoPath string) (string, error) {
	tmpFile, err := os.CreateTemp("", "transcribe-audio-*.flac")
	if err != nil {
		return "", err
	}
	tmpFile.Close()

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vn",
		"-acodec", "flac",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		tmpFile.Name(),
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		os.Remove(tmpFile.Name())
		return "", fmt.Errorf("ffmpeg audio extract: %s: %w", string(output), err)
	}

	return tmpFile.Name(), nil
}
