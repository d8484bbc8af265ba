package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/coordinator"
	"github.com/nerdneilsfield/go-pptx-translator/internal/storage"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/deck"
)

// 只接受这两种扩展名，.ppt 会在解析阶段因不是 zip 包而失败
var allowedExtensions = map[string]bool{".ppt": true, ".pptx": true}

type translateResponse struct {
	Success         bool       `json:"success"`
	FileID          string     `json:"file_id"`
	OutputFile      string     `json:"output_file"`
	SlidesProcessed int        `json:"slides_processed"`
	Fragments       int        `json:"fragments"`
	Stats           deck.Stats `json:"stats"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			jsonError(w, http.StatusRequestEntityTooLarge, "文件过大", "INPUT_VALIDATION")
			return
		}
		jsonError(w, http.StatusBadRequest, "没有上传文件", "INPUT_VALIDATION")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "没有上传文件", "INPUT_VALIDATION")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		jsonError(w, http.StatusBadRequest, "没有选择文件", "INPUT_VALIDATION")
		return
	}
	if !allowedExtensions[strings.ToLower(filepath.Ext(header.Filename))] {
		jsonError(w, http.StatusBadRequest, "只支持 PPT/PPTX 文件", "INPUT_VALIDATION")
		return
	}

	id := s.opts.Store.NewID()
	n, err := s.opts.Store.SaveUpload(id, file)
	if err != nil {
		s.log.Error("保存上传文件失败", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}
	if n == 0 {
		_ = s.opts.Store.RemoveUpload(id)
		jsonError(w, http.StatusBadRequest, "上传的文件为空", "INPUT_VALIDATION")
		return
	}

	log := s.log.With(zap.String("file_id", id), zap.String("filename", header.Filename))
	log.Info("开始翻译", zap.Int64("bytes", n))

	tr, err := s.opts.NewTranslator()
	if err != nil {
		log.Error("创建翻译器失败", zap.Error(err))
		jsonError(w, http.StatusInternalServerError, err.Error(), "TRANSLATION_SERVICE")
		return
	}

	c := coordinator.New(tr, log, coordinator.WithWriter(deck.NewWriter(s.opts.FallbackFont, s.opts.Strict, log)))
	result, err := c.TranslateFile(r.Context(), s.opts.Store.UploadPath(id), s.opts.Store.OutputPath(id))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, deck.ErrInputValidation) {
			status = http.StatusBadRequest
		}
		log.Error("翻译失败", zap.Error(err))
		jsonError(w, status, err.Error(), deck.Code(err))
		return
	}

	writeJSON(w, http.StatusOK, translateResponse{
		Success:         true,
		FileID:          id,
		OutputFile:      result.OutputFile,
		SlidesProcessed: result.SlidesProcessed,
		Fragments:       result.Fragments,
		Stats:           result.Stats,
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "fileID")
	path, err := s.opts.Store.Output(id)
	if errors.Is(err, storage.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "文件不存在", "")
		return
	}
	if err != nil {
		jsonError(w, http.StatusInternalServerError, err.Error(), "INTERNAL")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="translated_%s.pptx"`, id))
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
