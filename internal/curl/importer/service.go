package importer

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/reqtree/internal/collection"
	"github.com/unkn0wn-root/reqtree/internal/curl"
	"github.com/unkn0wn-root/reqtree/internal/errdef"
	"github.com/unkn0wn-root/reqtree/internal/logging"
	"github.com/unkn0wn-root/reqtree/internal/request"
)

// Appender receives a finished import. *collection.Tree satisfies it.
type Appender interface {
	AppendOrCreate(target string, req request.Request) (collection.Index, bool, error)
}

// Service turns curl command text into requests. Every import is fully built
// and validated before it reaches the pending slot, so a failed import never
// leaves a partial request behind.
type Service struct {
	Parser    curl.Parser
	Appender  Appender
	Saver     collection.Saver
	Logger    *zap.Logger
	Clipboard func() (string, error)

	mu      sync.Mutex
	pending *request.Request
}

func NewService(appender Appender, saver collection.Saver, log *zap.Logger) *Service {
	return &Service{
		Parser:    curl.NewParser(),
		Appender:  appender,
		Saver:     saver,
		Logger:    logging.OrNop(log),
		Clipboard: clipboard.ReadAll,
	}
}

// ImportFile reads one curl command from path. The request is named after the
// file stem.
func (s *Service) ImportFile(path string) (request.Request, error) {
	name, err := NameFromPath(path)
	if err != nil {
		return request.Request{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return request.Request{}, errdef.Wrap(errdef.CodeFilesystem, err, "could not read cURL file")
	}
	return s.ImportText(name, string(data))
}

func (s *Service) ImportClipboard(name string) (request.Request, error) {
	if s.Clipboard == nil {
		return request.Request{}, errdef.New(errdef.CodeFilesystem, "clipboard not available")
	}
	text, err := s.Clipboard()
	if err != nil {
		return request.Request{}, errdef.Wrap(errdef.CodeFilesystem, err, "could not read clipboard")
	}
	return s.ImportText(name, text)
}

func (s *Service) ImportText(name, text string) (request.Request, error) {
	parser := s.Parser
	if parser == nil {
		parser = curl.NewParser()
	}
	parsed, err := parser.Parse(text)
	if err != nil {
		return request.Request{}, errdef.Wrap(errdef.CodeCurl, err, "could not parse cURL")
	}
	log := s.logger()
	for _, w := range parsed.Warnings {
		log.Warn("curl import", zap.String("request", name), zap.String("warning", w))
	}

	req, err := Build(parsed, name)
	if err != nil {
		return request.Request{}, err
	}

	s.mu.Lock()
	s.pending = &req
	s.mu.Unlock()
	log.Debug("curl parsed",
		zap.String("request", name),
		zap.String("method", req.Method.String()),
		zap.String("url", req.URL),
		zap.Stringer("auth", req.Auth.Kind),
	)
	return req.Clone(), nil
}

// Pending returns the last successful import that has not been appended yet.
func (s *Service) Pending() (request.Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return request.Request{}, false
	}
	return s.pending.Clone(), true
}

// AppendPending hands the pending request to the appender, then asks the
// saver to persist the receiving collection. The slot is emptied only when
// the append succeeds.
func (s *Service) AppendPending(target string) (collection.Index, bool, error) {
	s.mu.Lock()
	req := s.pending
	s.mu.Unlock()
	if req == nil {
		return collection.Index{}, false, errdef.New(errdef.CodeCollection, "no pending import")
	}
	if s.Appender == nil {
		return collection.Index{}, false, errdef.New(errdef.CodeCollection, "no collection appender configured")
	}

	idx, created, err := s.Appender.AppendOrCreate(target, *req)
	if err != nil {
		return collection.Index{}, false, errdef.Wrap(errdef.CodeCollection, err, "append %q", req.Name)
	}

	s.mu.Lock()
	if s.pending == req {
		s.pending = nil
	}
	s.mu.Unlock()

	s.logger().Info("request imported",
		zap.String("request", req.Name),
		zap.Int("collection", idx.Collection),
		zap.Bool("created", created),
	)
	if s.Saver != nil {
		s.Saver.Save(idx.Collection)
	}
	return idx, created, nil
}

func (s *Service) logger() *zap.Logger {
	return logging.OrNop(s.Logger)
}

// Build maps a parsed command onto a Request.
func Build(p *curl.Parsed, name string) (request.Request, error) {
	if p == nil {
		return request.Request{}, errdef.New(errdef.CodeCurl, "empty cURL command")
	}
	base, params, err := SplitURL(p.URL)
	if err != nil {
		return request.Request{}, err
	}

	req := request.NewRequest(name)
	req.URL = base
	req.Params = params
	req.Method = inferMethod(p)
	req.Headers = copyHeaders(p.Headers)
	req.Auth = detectAuth(p)
	req.Body = request.RawBody(p.RawBody)
	return req, nil
}

// SplitURL strips the query from raw and returns it as enabled params in
// order of appearance.
func SplitURL(raw string) (string, []request.KeyValue, error) {
	return request.SplitURL(raw)
}

func copyHeaders(in []curl.Header) []request.KeyValue {
	out := make([]request.KeyValue, 0, len(in))
	for _, h := range in {
		if strings.EqualFold(h.Name, request.HeaderAuthorization) {
			continue
		}
		out = append(out, request.Pair(h.Name, h.Value))
	}
	return out
}

// NameFromPath derives a request name from the file stem. A dotfile with no
// further extension keeps its whole name.
func NameFromPath(path string) (string, error) {
	base := filepath.Base(path)
	if !utf8.ValidString(base) {
		return "", errdef.New(errdef.CodeFilesystem, "could not extract file name: not valid UTF-8")
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" && len(base) > 1 && strings.HasPrefix(base, ".") {
		stem = base
	}
	if stem == "" || stem == "." || base == string(filepath.Separator) {
		return "", errdef.New(errdef.CodeFilesystem, "could not extract file name from %q", path)
	}
	return stem, nil
}
