package nasm

// runtimeBSS reserves the scratch buffers used by write_int and
// read_int, appended after the program's own global variables.
const runtimeBSS = `
numbuf: resb 24
readbuf: resb 24
`

// runtimeText implements ecrire and lire directly on top of the read
// and write syscalls: a decimal formatter and a decimal parser, each
// working from a fixed-size scratch buffer reserved in .bss. Emitted
// once per program, regardless of how many call sites use them.
const runtimeText = `
; write_int: print the signed 32-bit integer in edi to stdout, LF-terminated.
write_int:
	push	rbx
	push	r12
	push	r13
	mov	r12d, edi
	mov	r13, 0
	test	r12d, r12d
	jns	.positive
	mov	r13, 1
	neg	r12d
.positive:
	lea	rbx, [numbuf+23]
	mov	byte [rbx], 10
	mov	eax, r12d
	mov	ecx, 10
.digits:
	xor	edx, edx
	div	ecx
	add	dl, '0'
	dec	rbx
	mov	[rbx], dl
	test	eax, eax
	jnz	.digits
	test	r13, r13
	jz	.nosign
	dec	rbx
	mov	byte [rbx], '-'
.nosign:
	lea	rdx, [numbuf+24]
	sub	rdx, rbx
	mov	rsi, rbx
	mov	rdi, 1
	mov	rax, 1
	syscall
	pop	r13
	pop	r12
	pop	rbx
	ret

; read_int: read one line from stdin and parse it as a signed decimal
; integer into eax.
read_int:
	push	rbx
	mov	rax, 0
	mov	rdi, 0
	lea	rsi, [readbuf]
	mov	rdx, 24
	syscall
	mov	rcx, rax
	lea	rbx, [readbuf]
	xor	eax, eax
	mov	r8d, 0
	test	rcx, rcx
	jz	.done
	cmp	byte [rbx], '-'
	jne	.parse
	mov	r8d, 1
	inc	rbx
	dec	rcx
.parse:
	test	rcx, rcx
	jz	.sign
	movzx	edx, byte [rbx]
	cmp	dl, '0'
	jl	.sign
	cmp	dl, '9'
	jg	.sign
	imul	eax, eax, 10
	sub	dl, '0'
	movzx	edx, dl
	add	eax, edx
	inc	rbx
	dec	rcx
	jmp	.parse
.sign:
	test	r8d, r8d
	jz	.done
	neg	eax
.done:
	pop	rbx
	ret
`
