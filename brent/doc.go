/*
Package brent builds and checks Brent's equations.

A scheme with coefficient tensors A (alpha), B (beta) and C (gamma) computes
the product of two matrices iff, for every index tuple (i,j,m,n,p,q),

	sum over k of A[i,j,k]·B[m,n,k]·C[p,q,k] = δ(i=p)·δ(j=m)·δ(n=q)

Each such equation is "odd" if its right-hand side is 1 and "even" otherwise.

Build enumerates the equations of a known modulo-2 scheme. Only triples whose
three coefficients are non-zero take part in an equation. The literals they
reference are registered as variables with dense ids, in a fixed enumeration
order, so that two builds of the same scheme are identical. F·G sub-products
used by at least two equations are shared as dyads.

Validate is the ground truth: it recomputes every equation from the raw
coefficients of a scheme, whatever way the scheme was obtained.
*/
package brent
