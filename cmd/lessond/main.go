// Lessond runs the lesson services used in the container and Kubernetes
// tutorials: an echo service and a log service with an optional
// secret-gated admin surface.
//
// Usage:
//
//	# Day 1: echo service
//	lessond echo
//
//	# Day 2, step 1: log service (catch-all only)
//	lessond log
//
//	# Day 2, step 7: log service with liveness probe and admin routes
//	API_KEY=secret1 lessond log --admin
//
//	# Load variables from a dotenv file and tune the server
//	lessond log --admin --env-file .env --config lessond.yaml
package main

func main() {
	Execute()
}
