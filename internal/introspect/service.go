// Package introspect exposes the typed output of a module load — its
// diagnostics (spec §6.3) and its top-level declarations' finalized types
// (spec §4.5) — to an out-of-process build tool over gRPC.
//
// This mirrors the teacher's internal/evaluator/builtins_grpc.go: rather
// than checking in protoc-generated stubs, a .proto schema is parsed at
// startup with github.com/jhump/protoreflect/desc/protoparse, requests and
// responses are built as github.com/jhump/protoreflect/dynamic.Message
// values against the parsed descriptors, and a grpc.ServiceDesc is
// assembled by hand (the teacher's builtinGrpcRegister pattern) instead of
// handwriting generated code. This service itself is not part of the
// semantic core — it is the one caller-facing surface SPEC_FULL.md adds on
// top of it (a "diagnostics export", not a CLI driver or an LSP, both of
// which remain out of scope per spec §1).
package introspect

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"github.com/jhump/protoreflect/dynamic"
	"google.golang.org/grpc"

	"github.com/nomina-lang/nomina/internal/ast"
	"github.com/nomina-lang/nomina/internal/compiler"
	"github.com/nomina-lang/nomina/internal/diag"
	"github.com/nomina-lang/nomina/internal/modulesys"
	"github.com/nomina-lang/nomina/internal/types"
)

//go:embed schema.proto
var schemaSource string

const schemaFilename = "nomina_introspect.proto"

// Schema holds the parsed descriptor set for schema.proto, built once at
// service construction the way the teacher's grpcLoadProto builds a
// *desc.FileDescriptor from a parsed .proto file into protoRegistry.
type Schema struct {
	file       *desc.FileDescriptor
	service    *desc.ServiceDescriptor
	method     *desc.MethodDescriptor
	reqType    *desc.MessageDescriptor
	summary    *desc.MessageDescriptor
	declSummary *desc.MessageDescriptor
	issueType  *desc.MessageDescriptor
	qualType   *desc.MessageDescriptor
}

// ParseSchema parses the embedded schema.proto, exactly as
// builtinGrpcLoadProto parses a user-supplied .proto file, except the
// source comes from an in-memory accessor
// (protoparse.FileContentsFromMap) instead of the filesystem, since this
// schema ships inside the binary.
func ParseSchema() (*Schema, error) {
	parser := protoparse.Parser{
		Accessor: protoparse.FileContentsFromMap(map[string]string{
			schemaFilename: schemaSource,
		}),
	}
	fds, err := parser.ParseFiles(schemaFilename)
	if err != nil {
		return nil, fmt.Errorf("introspect: failed to parse schema: %w", err)
	}
	if len(fds) != 1 {
		return nil, fmt.Errorf("introspect: expected 1 file descriptor, got %d", len(fds))
	}
	fd := fds[0]

	sd := fd.FindService("nomina.introspect.Introspection")
	if sd == nil {
		return nil, fmt.Errorf("introspect: service Introspection not found in schema")
	}
	md := sd.FindMethodByName("GetModuleSummary")
	if md == nil {
		return nil, fmt.Errorf("introspect: method GetModuleSummary not found")
	}

	s := &Schema{
		file:    fd,
		service: sd,
		method:  md,
		reqType: md.GetInputType(),
		summary: md.GetOutputType(),
	}
	s.declSummary = fd.FindMessage("nomina.introspect.DeclarationSummary")
	s.issueType = fd.FindMessage("nomina.introspect.Issue")
	s.qualType = fd.FindMessage("nomina.introspect.QualifiedType")
	if s.declSummary == nil || s.issueType == nil || s.qualType == nil {
		return nil, fmt.Errorf("introspect: schema missing expected nested message types")
	}
	return s, nil
}

// Provider resolves a module id to its loaded compiler.Module, the way a
// build driver sitting on top of internal/modulesys would.
type Provider interface {
	GetModule(id compiler.ModuleID) (*compiler.Module, bool)
	LastSession(id compiler.ModuleID) (sessionID string, ok bool)
}

// loaderProvider adapts a *modulesys.Loader plus its owning
// CompilerContext to the Provider interface.
type loaderProvider struct {
	cc     *compiler.CompilerContext
	loader *modulesys.Loader
}

// NewProvider wraps a CompilerContext/Loader pair for use by Service.
func NewProvider(cc *compiler.CompilerContext, loader *modulesys.Loader) Provider {
	return &loaderProvider{cc: cc, loader: loader}
}

func (p *loaderProvider) GetModule(id compiler.ModuleID) (*compiler.Module, bool) {
	return p.cc.GetModule(id)
}

func (p *loaderProvider) LastSession(id compiler.ModuleID) (string, bool) {
	sid, ok := p.loader.LastSession(id)
	if !ok {
		return "", false
	}
	return sid.String(), true
}

// Service serves the Introspection/GetModuleSummary RPC against a
// Provider, using dynamic messages built from Schema instead of generated
// stubs.
type Service struct {
	schema   *Schema
	provider Provider
}

// NewService builds a Service, parsing the embedded schema eagerly so a
// malformed schema fails at construction rather than on first request.
func NewService(provider Provider) (*Service, error) {
	schema, err := ParseSchema()
	if err != nil {
		return nil, err
	}
	return &Service{schema: schema, provider: provider}, nil
}

// Register installs the hand-built grpc.ServiceDesc onto server, the way
// builtinGrpcRegister constructs a grpc.ServiceDesc from a
// *desc.ServiceDescriptor and a caller-supplied implementation instead of
// a protoc-generated RegisterXxxServer function.
func (s *Service) Register(server *grpc.Server) {
	sd := &grpc.ServiceDesc{
		ServiceName: s.schema.service.GetFullyQualifiedName(),
		HandlerType: (*Service)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: s.schema.method.GetName(),
				Handler:    s.handleGetModuleSummary,
			},
		},
		Metadata: schemaFilename,
	}
	server.RegisterService(sd, s)
}

func (s *Service) handleGetModuleSummary(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	reqMsg := dynamic.NewMessage(s.schema.reqType)
	if err := dec(reqMsg); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return s.getModuleSummary(ctx, reqMsg)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + s.schema.service.GetFullyQualifiedName() + "/GetModuleSummary"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return s.getModuleSummary(ctx, req.(*dynamic.Message))
	}
	return interceptor(ctx, reqMsg, info, handler)
}

func (s *Service) getModuleSummary(_ context.Context, req *dynamic.Message) (*dynamic.Message, error) {
	moduleIDField, err := req.TryGetFieldByName("module_id")
	if err != nil {
		return nil, err
	}
	name, _ := moduleIDField.(string)

	id := resolveModuleID(name)
	mod, ok := s.provider.GetModule(id)
	if !ok {
		return nil, fmt.Errorf("introspect: module %q not loaded", name)
	}

	resp := dynamic.NewMessage(s.schema.summary)
	resp.SetFieldByName("module_id", mod.ID.String())
	resp.SetFieldByName("generation", int32(mod.Generation))
	if sessionID, ok := s.provider.LastSession(id); ok {
		resp.SetFieldByName("load_session_id", sessionID)
	}

	for _, d := range mod.AST.Decls() {
		if summary := s.declarationSummary(d); summary != nil {
			resp.AddRepeatedFieldByName("declarations", summary)
		}
	}
	for _, issue := range mod.Sink.Issues() {
		resp.AddRepeatedFieldByName("issues", s.issueMessage(issue))
	}

	return resp, nil
}

func resolveModuleID(name string) compiler.ModuleID {
	switch name {
	case "builtin":
		return compiler.BuiltinModuleID()
	case "stdlib":
		return compiler.StdlibModuleID()
	default:
		return compiler.LocalModuleID(name)
	}
}

func (s *Service) declarationSummary(d ast.Decl) *dynamic.Message {
	var kind string
	var qt *types.QualType
	switch decl := d.(type) {
	case *ast.FunctionDecl:
		kind = functionKindName(decl.Kind)
		qt = decl.Type()
	case *ast.PropertyDecl:
		kind = "property"
		qt = decl.Type()
	case *ast.NominalTypeDecl:
		kind = nominalKindName(decl.Kind)
		if decl.RealizedType != nil {
			qt = &types.QualType{Bare: decl.RealizedType, Quals: types.DefaultDeclQualifiers}
		}
	case *ast.ExtensionDecl:
		kind = "extension"
	default:
		return nil
	}

	msg := dynamic.NewMessage(s.schema.declSummary)
	msg.SetFieldByName("name", d.DeclName())
	msg.SetFieldByName("kind", kind)
	if qt != nil {
		msg.SetFieldByName("type", s.qualTypeMessage(qt))
	}
	return msg
}

func (s *Service) qualTypeMessage(q *types.QualType) *dynamic.Message {
	msg := dynamic.NewMessage(s.schema.qualType)
	msg.SetFieldByName("bare_type", q.Bare.String())
	msg.SetFieldByName("cst", q.Quals.Has(types.QualCst))
	msg.SetFieldByName("mut", q.Quals.Has(types.QualMut))
	return msg
}

func (s *Service) issueMessage(issue *diag.Issue) *dynamic.Message {
	msg := dynamic.NewMessage(s.schema.issueType)
	msg.SetFieldByName("id", issue.ID.String())
	msg.SetFieldByName("severity", issue.Severity.String())
	msg.SetFieldByName("code", string(issue.Code))
	msg.SetFieldByName("message", issue.Message)
	r := issue.Node.Range()
	msg.SetFieldByName("start_line", int32(r.StartLine))
	msg.SetFieldByName("start_col", int32(r.StartCol))
	msg.SetFieldByName("end_line", int32(r.EndLine))
	msg.SetFieldByName("end_col", int32(r.EndCol))
	return msg
}

func functionKindName(k ast.FunctionKind) string {
	switch k {
	case ast.FunctionMethod:
		return "method"
	case ast.FunctionConstructor:
		return "constructor"
	case ast.FunctionDestructor:
		return "destructor"
	default:
		return "function"
	}
}

func nominalKindName(k ast.NominalKind) string {
	switch k {
	case ast.NominalUnion:
		return "union"
	case ast.NominalInterface:
		return "interface"
	default:
		return "struct"
	}
}

