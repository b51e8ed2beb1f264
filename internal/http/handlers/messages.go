package handlers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	msgTitle        = "Professional AI Image Generator"
	msgPromptLabel  = "Describe the image you want"
	msgSizeLabel    = "Image size"
	msgQualityLabel = "Quality"
	msgGenerate     = "Generate Image"
	msgImprove      = "Improve Prompt"
	msgDownload     = "Download High-Quality Image"
	msgCaption      = "Professional AI Generated: %s"
	msgFailed       = "Failed to generate image. Please try again."
	msgEmptyPrompt  = "Please enter a prompt."
	msgInvalid      = "Invalid request: %s"
	msgNoImage      = "No image generated yet."
)

func init() {
	id := language.Indonesian
	for key, text := range map[string]string{
		msgTitle:        "Generator Gambar AI Profesional",
		msgPromptLabel:  "Jelaskan gambar yang Anda inginkan",
		msgSizeLabel:    "Ukuran gambar",
		msgQualityLabel: "Kualitas",
		msgGenerate:     "Buat Gambar",
		msgImprove:      "Perbaiki Prompt",
		msgDownload:     "Unduh Gambar Kualitas Tinggi",
		msgCaption:      "Hasil AI Profesional: %s",
		msgFailed:       "Gagal membuat gambar. Silakan coba lagi.",
		msgEmptyPrompt:  "Silakan masukkan prompt.",
		msgInvalid:      "Permintaan tidak valid: %s",
		msgNoImage:      "Belum ada gambar yang dibuat.",
	} {
		_ = message.SetString(id, key, text)
	}
}

func printer(locale string) *message.Printer {
	if locale == "id" {
		return message.NewPrinter(language.Indonesian)
	}
	return message.NewPrinter(language.English)
}
