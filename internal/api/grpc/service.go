package grpc

import (
	"context"

	"google.golang.org/grpc"

	notesv1 "mip-notes/pkg/notesv1"
)

// ServiceName полное имя gRPC сервиса
const ServiceName = "notes.v1.NotesService"

const (
	listNotesMethod  = "/" + ServiceName + "/ListNotes"
	createNoteMethod = "/" + ServiceName + "/CreateNote"
	updateNoteMethod = "/" + ServiceName + "/UpdateNote"
	deleteNoteMethod = "/" + ServiceName + "/DeleteNote"
	watchNotesMethod = "/" + ServiceName + "/WatchNotes"
)

// NotesServiceServer серверная часть NotesService
type NotesServiceServer interface {
	ListNotes(context.Context, *notesv1.ListNotesRequest) (*notesv1.ListNotesResponse, error)
	CreateNote(context.Context, *notesv1.CreateNoteRequest) (*notesv1.Note, error)
	UpdateNote(context.Context, *notesv1.UpdateNoteRequest) (*notesv1.Note, error)
	DeleteNote(context.Context, *notesv1.DeleteNoteRequest) (*notesv1.DeleteNoteResponse, error)
	WatchNotes(*notesv1.WatchNotesRequest, NotesWatchServer) error
}

// NotesWatchServer серверный стрим событий заметок
type NotesWatchServer interface {
	Send(*notesv1.NoteEvent) error
	grpc.ServerStream
}

type notesWatchServer struct {
	grpc.ServerStream
}

func (s *notesWatchServer) Send(ev *notesv1.NoteEvent) error {
	return s.ServerStream.SendMsg(ev)
}

// unaryHandler строит обработчик unary метода для ServiceDesc
func unaryHandler[Req, Resp any](fullMethod string, call func(NotesServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}

		handler := func(ctx context.Context, req any) (any, error) {
			resp, err := call(srv.(NotesServiceServer), ctx, req.(*Req))
			if err != nil {
				return nil, err
			}
			return resp, nil
		}

		if interceptor == nil {
			return handler(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		return interceptor(ctx, in, info, handler)
	}
}

func watchNotesHandler(srv any, stream grpc.ServerStream) error {
	in := new(notesv1.WatchNotesRequest)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}
	return srv.(NotesServiceServer).WatchNotes(in, &notesWatchServer{ServerStream: stream})
}

// NotesServiceDesc описание сервиса. Пишется вручную, сообщения кодируются jsonCodec.
var NotesServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*NotesServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListNotes",
			Handler: unaryHandler(listNotesMethod, func(s NotesServiceServer, ctx context.Context, in *notesv1.ListNotesRequest) (*notesv1.ListNotesResponse, error) {
				return s.ListNotes(ctx, in)
			}),
		},
		{
			MethodName: "CreateNote",
			Handler: unaryHandler(createNoteMethod, func(s NotesServiceServer, ctx context.Context, in *notesv1.CreateNoteRequest) (*notesv1.Note, error) {
				return s.CreateNote(ctx, in)
			}),
		},
		{
			MethodName: "UpdateNote",
			Handler: unaryHandler(updateNoteMethod, func(s NotesServiceServer, ctx context.Context, in *notesv1.UpdateNoteRequest) (*notesv1.Note, error) {
				return s.UpdateNote(ctx, in)
			}),
		},
		{
			MethodName: "DeleteNote",
			Handler: unaryHandler(deleteNoteMethod, func(s NotesServiceServer, ctx context.Context, in *notesv1.DeleteNoteRequest) (*notesv1.DeleteNoteResponse, error) {
				return s.DeleteNote(ctx, in)
			}),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchNotes",
			Handler:       watchNotesHandler,
			ServerStreams: true,
		},
	},
	Metadata: "notes/v1/notes.json",
}

// RegisterNotesServiceServer регистрирует реализацию на gRPC сервере
func RegisterNotesServiceServer(s grpc.ServiceRegistrar, srv NotesServiceServer) {
	s.RegisterService(&NotesServiceDesc, srv)
}

// NotesClient клиент NotesService поверх JSON кодека
type NotesClient struct {
	cc grpc.ClientConnInterface
}

// NewNotesClient создает клиента. Соединение должно использовать CallContentSubtype(CodecName).
func NewNotesClient(cc grpc.ClientConnInterface) *NotesClient {
	return &NotesClient{cc: cc}
}

// DialOptions опции соединения, включающие JSON кодек
func DialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(CodecName)),
	}
}

func (c *NotesClient) ListNotes(ctx context.Context, in *notesv1.ListNotesRequest, opts ...grpc.CallOption) (*notesv1.ListNotesResponse, error) {
	out := new(notesv1.ListNotesResponse)
	if err := c.cc.Invoke(ctx, listNotesMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *NotesClient) CreateNote(ctx context.Context, in *notesv1.CreateNoteRequest, opts ...grpc.CallOption) (*notesv1.Note, error) {
	out := new(notesv1.Note)
	if err := c.cc.Invoke(ctx, createNoteMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *NotesClient) UpdateNote(ctx context.Context, in *notesv1.UpdateNoteRequest, opts ...grpc.CallOption) (*notesv1.Note, error) {
	out := new(notesv1.Note)
	if err := c.cc.Invoke(ctx, updateNoteMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *NotesClient) DeleteNote(ctx context.Context, in *notesv1.DeleteNoteRequest, opts ...grpc.CallOption) (*notesv1.DeleteNoteResponse, error) {
	out := new(notesv1.DeleteNoteResponse)
	if err := c.cc.Invoke(ctx, deleteNoteMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// WatchNotes открывает стрим событий. Recv возвращает io.EOF, когда сервер закрыл стрим.
func (c *NotesClient) WatchNotes(ctx context.Context, in *notesv1.WatchNotesRequest, opts ...grpc.CallOption) (*NotesWatchClient, error) {
	stream, err := c.cc.NewStream(ctx, &NotesServiceDesc.Streams[0], watchNotesMethod, opts...)
	if err != nil {
		return nil, err
	}
	if err := stream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := stream.CloseSend(); err != nil {
		return nil, err
	}
	return &NotesWatchClient{ClientStream: stream}, nil
}

// NotesWatchClient клиентская сторона стрима WatchNotes
type NotesWatchClient struct {
	grpc.ClientStream
}

func (x *NotesWatchClient) Recv() (*notesv1.NoteEvent, error) {
	m := new(notesv1.NoteEvent)
	if err := x.ClientStream.RecvMsg(m); err != nil {
		return nil, err
	}
	return m, nil
}
