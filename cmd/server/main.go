package main // Entry point package

func main() {
	// Bootstrap (Cobra handles CLI)
	Execute()
}
