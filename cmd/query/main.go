package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	pb "perfmon-dashboard/src/grpc_control"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// -----------------------------------------------------------------------------

func main() {
	addr := flag.String("addr", "127.0.0.1:50051", "gRPC query service address")
	what := flag.String("get", "categories", "counters, categories or health")
	timeout := flag.Duration("timeout", 5*time.Second, "call timeout")
	flag.Parse()

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, conn, *what); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// -----------------------------------------------------------------------------

func run(ctx context.Context, conn *grpc.ClientConn, what string) error {
	client := pb.NewDashboardClient(conn)

	var (
		out *structpb.Struct
		err error
	)
	switch what {
	case "counters":
		out, err = client.GetCounterSummaries(ctx)
	case "categories":
		out, err = client.GetCategorySummaries(ctx)
	case "health":
		resp, herr := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: pb.ServiceName})
		if herr != nil {
			return herr
		}
		fmt.Println(resp.GetStatus())
		return nil
	default:
		return fmt.Errorf("unknown query %q", what)
	}
	if err != nil {
		return err
	}

	raw, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
